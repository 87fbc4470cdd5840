package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlfredDev/alfred-bedrock-core/internal/config"
)

func TestResolveTimeout_DefaultsToConfig(t *testing.T) {
	cfg := &config.Config{DefaultUpstreamTimeout: 30 * time.Second}
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	if got := resolveTimeout(r, cfg); got != 30*time.Second {
		t.Fatalf("expected config default, got %s", got)
	}
}

func TestResolveTimeout_HonoursHeaderOverride(t *testing.T) {
	cfg := &config.Config{DefaultUpstreamTimeout: 30 * time.Second}
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	r.Header.Set("X-Alfred-Timeout-Seconds", "10")
	if got := resolveTimeout(r, cfg); got != 10*time.Second {
		t.Fatalf("expected header override, got %s", got)
	}
}

func TestResolveTimeout_CapsAtMaxClientTimeout(t *testing.T) {
	cfg := &config.Config{DefaultUpstreamTimeout: 30 * time.Second}
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	r.Header.Set("X-Alfred-Timeout-Seconds", "3600")
	if got := resolveTimeout(r, cfg); got != maxClientTimeout {
		t.Fatalf("expected cap at %s, got %s", maxClientTimeout, got)
	}
}

func TestResolveTimeout_IgnoresInvalidHeader(t *testing.T) {
	cfg := &config.Config{DefaultUpstreamTimeout: 30 * time.Second}
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	r.Header.Set("X-Alfred-Timeout-Seconds", "not-a-number")
	if got := resolveTimeout(r, cfg); got != 30*time.Second {
		t.Fatalf("expected fallback to config default, got %s", got)
	}
}

func TestTimeout_FiresGatewayTimeoutOnSlowHandler(t *testing.T) {
	cfg := &config.Config{DefaultUpstreamTimeout: 10 * time.Millisecond}
	mw := Timeout(zerolog.Nop(), cfg)

	blocked := make(chan struct{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(blocked)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil))

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("expected handler's context to be cancelled")
	}

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
}

func TestTimeout_PassesThroughFastHandler(t *testing.T) {
	cfg := &config.Config{DefaultUpstreamTimeout: time.Second}
	mw := Timeout(zerolog.Nop(), cfg)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
