package oprouter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func baseHeaders(h http.Header) {
	h.Set("X-Alfred-Provider", "bedrock")
	h.Set("X-Alfred-Aws-Region", "us-east-1")
	h.Set("X-Alfred-Aws-Access-Key-Id", "AKIA...")
	h.Set("X-Alfred-Aws-Secret-Access-Key", "secret")
}

func TestResolveTarget_MissingProvider(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	if _, err := ResolveTarget(r); err == nil {
		t.Fatal("expected validation error for missing provider header")
	}
}

func TestResolveTarget_MissingCredentials(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	r.Header.Set("X-Alfred-Provider", "bedrock")
	r.Header.Set("X-Alfred-Aws-Region", "us-east-1")
	if _, err := ResolveTarget(r); err == nil {
		t.Fatal("expected validation error for missing credentials")
	}
}

func TestResolveTarget_DefaultsAuthAndModelType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	baseHeaders(r.Header)
	target, err := ResolveTarget(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.AuthType != AuthStatic {
		t.Fatalf("expected default static auth, got %s", target.AuthType)
	}
	if target.ModelType != ModelTypeChat {
		t.Fatalf("expected default chat model type, got %s", target.ModelType)
	}
	if target.Strict {
		t.Fatal("expected strict compliance to default false")
	}
}

func TestResolveTarget_AssumedRoleRequiresRoleARN(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	baseHeaders(r.Header)
	r.Header.Set("X-Alfred-Aws-Auth-Type", "assumedRole")
	if _, err := ResolveTarget(r); err == nil {
		t.Fatal("expected validation error when assumedRole is set without a role ARN")
	}
}

func TestResolveTarget_RejectsUnknownSSEValue(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	baseHeaders(r.Header)
	r.Header.Set("X-Alfred-Aws-Server-Side-Encryption", "aes256")
	if _, err := ResolveTarget(r); err == nil {
		t.Fatal("expected validation error for unsupported SSE value")
	}
}

func TestResolveTarget_RejectsUnknownModelType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	baseHeaders(r.Header)
	r.Header.Set("X-Alfred-Model-Type", "image")
	if _, err := ResolveTarget(r); err == nil {
		t.Fatal("expected validation error for unrecognised model type")
	}
}
