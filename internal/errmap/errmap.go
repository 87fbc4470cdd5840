/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Canonical error taxonomy (spec.md §7) plus the per-
             provider error transform (spec.md §4.8) that turns a
             non-2xx Bedrock/S3 response, or a locally-detected fault,
             into the canonical ErrorEnvelope and an HTTP status.
Root Cause:  Every operation handler needs the same "what status, what
             envelope" decision; centralizing it keeps that decision
             consistent across chat/batch/finetune/file handlers.
Context:     httpapi handlers pass anything returned from
             oprouter/bedrockcfg/s3bridge to writeError, which calls
             As and Envelope and writes the resulting status +
             envelope; the oprouter Dispatch* functions return errors
             rather than writing them (only the streaming chat
             dispatch writes to the ResponseWriter, and only SSE
             frames).
Suitability: L3 — a status/shape decision table, worth getting
             consistent rather than reimplemented per handler.
──────────────────────────────────────────────────────────────
*/
package errmap

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// Kind enumerates the canonical error taxonomy from spec.md §7.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindUnsupportedOp      Kind = "unsupported_operation"
	KindCredential         Kind = "credential_error"
	KindUpstream           Kind = "upstream_error"
	KindTransform          Kind = "transform_error"
	KindStream             Kind = "stream_error"
	KindIO                 Kind = "io_error"
)

// Error is a taxonomy-tagged error. Handlers use errors.As to recover the
// Kind and Status a lower layer intended, rather than string-matching
// messages.
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Provider string
	Err      error

	// recognizedShape is set when Message was extracted from a known
	// provider error body (Bedrock JSON `{message}` or S3 XML
	// `<Code>/<Message>`), per spec.md §4.8: those envelopes carry
	// code:null, unlike the unrecognised-shape fallback, which carries
	// the HTTP status as code.
	recognizedShape bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a ValidationError — surfaced to the caller without
// any upstream call having been made.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unsupported builds an UnsupportedOperation error for an operation the
// selected provider doesn't implement, per spec.md §4.8's
// listFiles/deleteFile-on-Bedrock example. The message capitalizes the
// provider name (e.g. "Bedrock") even though Provider itself stays the
// lowercase routing identifier.
func Unsupported(provider, operation string) *Error {
	return &Error{
		Kind:     KindUnsupportedOp,
		Status:   http.StatusNotFound,
		Message:  fmt.Sprintf("%s is not supported by %s", operation, displayName(provider)),
		Provider: provider,
	}
}

// displayName title-cases a routing provider identifier for use in a
// human-readable message, e.g. "bedrock" -> "Bedrock".
func displayName(provider string) string {
	if provider == "" {
		return provider
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}

// Credential builds a CredentialError — missing keys, STS denial, or an
// expired session.
func Credential(provider string, err error) *Error {
	return &Error{Kind: KindCredential, Status: http.StatusUnauthorized, Message: err.Error(), Provider: provider, Err: err}
}

// Transform builds a TransformError for a 2xx upstream body that doesn't
// match the expected schema, surfaced as 502 per spec.md §7.
func Transform(provider string, err error) *Error {
	return &Error{Kind: KindTransform, Status: http.StatusBadGateway, Message: "invalid provider response: " + err.Error(), Provider: provider, Err: err}
}

// IO builds an IOError for a client disconnect or upload part failure.
func IO(err error) *Error {
	return &Error{Kind: KindIO, Status: http.StatusBadGateway, Message: err.Error(), Err: err}
}

// Timeout builds the canonical Timeout envelope for an upstream call that
// exceeded its deadline.
func Timeout(provider string) *Error {
	return &Error{Kind: KindUpstream, Status: http.StatusGatewayTimeout, Message: "upstream request timed out", Provider: provider}
}

// Upstream maps a non-2xx upstream HTTP response to an UpstreamError,
// applying the provider-specific body shape recognised in spec.md §4.8:
// Bedrock JSON `{message}`, S3 XML `<Code>/<Message>`, a 403 SigV4
// denial, or an unrecognised shape passed through as a stringified body.
func Upstream(provider string, status int, body []byte) *Error {
	msg, recognized := extractMessage(provider, status, body)
	kind := KindUpstream
	if status == http.StatusForbidden {
		kind = KindCredential
	}
	return &Error{Kind: kind, Status: status, Message: msg, Provider: provider, recognizedShape: recognized}
}

// extractMessage picks msg out of body and reports whether body matched a
// known provider error shape (Bedrock JSON `{message}`, S3 XML
// `<Code>/<Message>`) — per spec.md §4.8, those two recognised shapes carry
// code:null in the envelope, unlike the unrecognised fallback below, which
// carries the HTTP status as code.
func extractMessage(provider string, status int, body []byte) (msg string, recognized bool) {
	if msg, ok := bedrockJSONMessage(body); ok {
		return msg, true
	}
	if msg, ok := s3XMLMessage(body); ok {
		return msg, true
	}
	if len(body) == 0 {
		return fmt.Sprintf("%s returned status %d", provider, status), false
	}
	return string(body), false
}

type bedrockErrorBody struct {
	Message string `json:"message"`
}

func bedrockJSONMessage(body []byte) (string, bool) {
	var b bedrockErrorBody
	if err := json.Unmarshal(body, &b); err != nil || b.Message == "" {
		return "", false
	}
	return b.Message, true
}

type s3ErrorBody struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

func s3XMLMessage(body []byte) (string, bool) {
	var b s3ErrorBody
	if err := xml.Unmarshal(body, &b); err != nil || b.Message == "" {
		return "", false
	}
	if b.Code != "" {
		return fmt.Sprintf("%s: %s", b.Code, b.Message), true
	}
	return b.Message, true
}

// Envelope converts e to the wire-level canonical ErrorEnvelope.
func Envelope(e *Error) schema.ErrorEnvelope {
	env := schema.ErrorEnvelope{
		Error:    schema.ErrorDetail{Message: e.Message},
		Provider: e.Provider,
	}
	if e.Kind == KindCredential {
		t := "authentication_error"
		env.Error.Type = &t
	}
	if e.Kind == KindValidation {
		t := "invalid_request_error"
		env.Error.Type = &t
	}
	if !e.recognizedShape {
		code := fmt.Sprintf("%d", e.Status)
		env.Error.Code = &code
	}
	return env
}

// As recovers an *Error from err, wrapping it generically as an
// UpstreamError (502, "unknown shapes") if err carries no taxonomy tag —
// the "unknown shapes" fallback of spec.md §4.8.
func As(provider string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUpstream, Status: http.StatusBadGateway, Message: err.Error(), Provider: provider, Err: err}
}
