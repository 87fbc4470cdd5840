package errmap

import (
	"errors"
	"net/http"
	"testing"
)

func TestUpstream_BedrockJSONMessage(t *testing.T) {
	e := Upstream("bedrock", 424, []byte(`{"message":"Malformed input request"}`))
	if e.Kind != KindUpstream {
		t.Fatalf("expected KindUpstream, got %s", e.Kind)
	}
	if e.Message != "Malformed input request" {
		t.Fatalf("expected extracted message, got %q", e.Message)
	}
}

func TestUpstream_S3XMLMessage(t *testing.T) {
	body := []byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>The key does not exist</Message></Error>`)
	e := Upstream("bedrock", 404, body)
	if e.Message != "NoSuchKey: The key does not exist" {
		t.Fatalf("expected code+message, got %q", e.Message)
	}
}

func TestUpstream_403IsCredentialError(t *testing.T) {
	e := Upstream("bedrock", http.StatusForbidden, []byte(`{"message":"access denied"}`))
	if e.Kind != KindCredential {
		t.Fatalf("expected KindCredential for 403, got %s", e.Kind)
	}
}

func TestUpstream_UnrecognisedBodyPassesThrough(t *testing.T) {
	e := Upstream("bedrock", 500, []byte("internal server error"))
	if e.Message != "internal server error" {
		t.Fatalf("expected raw body passthrough, got %q", e.Message)
	}
}

func TestUpstream_EmptyBodySynthesizesMessage(t *testing.T) {
	e := Upstream("bedrock", 503, nil)
	if e.Message == "" {
		t.Fatal("expected a synthesized message for an empty body")
	}
}

func TestUnsupported_CapitalizesProviderInMessage(t *testing.T) {
	e := Unsupported("bedrock", "listFiles")
	if e.Message != "listFiles is not supported by Bedrock" {
		t.Fatalf("expected capitalized provider name, got %q", e.Message)
	}
	if e.Provider != "bedrock" {
		t.Fatalf("expected Provider field to stay lowercase, got %q", e.Provider)
	}
}

func TestAs_RecoversTaggedError(t *testing.T) {
	original := Validation("bad model")
	recovered := As("bedrock", original)
	if recovered != original {
		t.Fatal("expected As to recover the same *Error instance")
	}
}

func TestAs_WrapsUntaggedError(t *testing.T) {
	recovered := As("bedrock", errors.New("boom"))
	if recovered.Kind != KindUpstream || recovered.Status != http.StatusBadGateway {
		t.Fatalf("expected generic upstream wrap, got %+v", recovered)
	}
}

func TestEnvelope_CredentialErrorSetsType(t *testing.T) {
	env := Envelope(Credential("bedrock", errors.New("expired session")))
	if env.Error.Type == nil || *env.Error.Type != "authentication_error" {
		t.Fatalf("expected authentication_error type, got %+v", env.Error.Type)
	}
}

func TestEnvelope_ValidationErrorSetsType(t *testing.T) {
	env := Envelope(Validation("missing field"))
	if env.Error.Type == nil || *env.Error.Type != "invalid_request_error" {
		t.Fatalf("expected invalid_request_error type, got %+v", env.Error.Type)
	}
}

func TestEnvelope_RecognisedBedrockJSONShapeOmitsCode(t *testing.T) {
	env := Envelope(Upstream("bedrock", 500, []byte(`{"message":"Malformed input request"}`)))
	if env.Error.Code != nil {
		t.Fatalf("expected nil code for a recognised Bedrock JSON error shape, got %q", *env.Error.Code)
	}
}

func TestEnvelope_RecognisedS3XMLShapeOmitsCode(t *testing.T) {
	body := []byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>The key does not exist</Message></Error>`)
	env := Envelope(Upstream("bedrock", 404, body))
	if env.Error.Code != nil {
		t.Fatalf("expected nil code for a recognised S3 XML error shape, got %q", *env.Error.Code)
	}
}

func TestEnvelope_UnrecognisedShapeSetsCode(t *testing.T) {
	env := Envelope(Upstream("bedrock", 500, []byte("internal server error")))
	if env.Error.Code == nil || *env.Error.Code != "500" {
		t.Fatalf("expected code 500 for an unrecognised error shape, got %+v", env.Error.Code)
	}
}
