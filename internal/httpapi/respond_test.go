package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
)

func TestS3KeyFromURI_StripsBucketPrefix(t *testing.T) {
	got := s3KeyFromURI("s3://my-bucket/uploads/batch-1.jsonl")
	if got != "uploads/batch-1.jsonl" {
		t.Fatalf("expected bare key, got %q", got)
	}
}

func TestS3KeyFromURI_BareKeyPassesThrough(t *testing.T) {
	got := s3KeyFromURI("uploads/batch-1.jsonl")
	if got != "uploads/batch-1.jsonl" {
		t.Fatalf("expected unchanged key, got %q", got)
	}
}

func TestS3KeyFromURI_BucketOnlyReturnsBucketName(t *testing.T) {
	got := s3KeyFromURI("s3://my-bucket")
	if got != "my-bucket" {
		t.Fatalf("expected trimmed scheme with no slash left untouched, got %q", got)
	}
}

func TestWriteError_UsesFallbackProviderAndEnvelopeStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, "bedrock", errors.New("boom"))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected generic upstream status, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
}

func TestWriteError_PreservesTaggedErrorStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, "bedrock", errmap.Validation("missing field"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation error, got %d", rec.Code)
	}
}

func TestDecodeJSON_RejectsMalformedBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	r.Body = http.NoBody
	rec := httptest.NewRecorder()
	var dst map[string]interface{}
	if err := decodeJSON(rec, r, 1<<20, &dst); err == nil {
		t.Fatal("expected error decoding an empty body into a struct")
	}
}
