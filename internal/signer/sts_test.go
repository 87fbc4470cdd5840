package signer

import (
	"strings"
	"testing"
)

func TestSignSTS_SessionTokenIncludedInSignedHeaders(t *testing.T) {
	base := Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret", SessionToken: "token123"}
	h := signSTS(base, "sts.us-east-1.amazonaws.com", "us-east-1", []byte("Action=AssumeRole"))

	if got := h.Get("X-Amz-Security-Token"); got != "token123" {
		t.Fatalf("expected X-Amz-Security-Token header to be set, got %q", got)
	}
	auth := h.Get("Authorization")
	if !strings.Contains(auth, "SignedHeaders=content-type;host;x-amz-date;x-amz-security-token") {
		t.Fatalf("expected x-amz-security-token in SignedHeaders, got %q", auth)
	}
}

func TestSignSTS_NoSessionTokenOmitsHeader(t *testing.T) {
	base := Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}
	h := signSTS(base, "sts.us-east-1.amazonaws.com", "us-east-1", []byte("Action=AssumeRole"))

	if got := h.Get("X-Amz-Security-Token"); got != "" {
		t.Fatalf("expected no X-Amz-Security-Token header, got %q", got)
	}
	auth := h.Get("Authorization")
	if strings.Contains(auth, "x-amz-security-token") {
		t.Fatalf("expected no x-amz-security-token in SignedHeaders, got %q", auth)
	}
}
