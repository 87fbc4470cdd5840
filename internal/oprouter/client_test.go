package oprouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
)

func newTestClient() *Client {
	pool := signer.NewTransportPool(signer.DefaultPoolConfig())
	return NewClient(pool, signer.NewAssumeRoleCache(pool.Client(signer.ServiceBedrock, 0)))
}

func staticTarget() ProviderTarget {
	return ProviderTarget{
		Provider: "bedrock",
		Region:   "us-east-1",
		AuthType: AuthStatic,
		Credentials: signer.Credentials{
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "secret",
		},
	}
}

func TestClientDo_ReturnsBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/model/foo/converse")
	ep := Endpoint{Method: http.MethodPost, Service: signer.ServiceBedrockRuntime, URL: u}

	c := newTestClient()
	body, _, err := c.do(context.Background(), ep, staticTarget(), []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestClientDo_MapsNonSuccessStatusToUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Malformed input request"}`))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/model/foo/converse")
	ep := Endpoint{Method: http.MethodPost, Service: signer.ServiceBedrockRuntime, URL: u}

	c := newTestClient()
	_, _, err := c.do(context.Background(), ep, staticTarget(), []byte(`{}`))
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestClientDoJSON_DecodesSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"stopReason":"end_turn"}`))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/model/foo/converse")
	ep := Endpoint{Method: http.MethodPost, Service: signer.ServiceBedrockRuntime, URL: u}

	c := newTestClient()
	decoded, _, err := c.doJSON(context.Background(), ep, staticTarget(), []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["stopReason"] != "end_turn" {
		t.Fatalf("expected decoded field, got %+v", decoded)
	}
}
