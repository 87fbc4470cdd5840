package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseHeaders_StampsGatewayHeader(t *testing.T) {
	handler := ResponseHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil))

	if got := rec.Header().Get("X-Alfred-Gateway"); got != "true" {
		t.Fatalf("expected gateway header set, got %q", got)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status preserved, got %d", rec.Code)
	}
}

func TestResponseHeaders_ImplicitWriteStampsHeader(t *testing.T) {
	handler := ResponseHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil))

	if got := rec.Header().Get("X-Alfred-Gateway"); got != "true" {
		t.Fatalf("expected gateway header set on implicit 200, got %q", got)
	}
}
