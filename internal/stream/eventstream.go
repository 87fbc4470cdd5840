/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Decodes Bedrock's AWS event-stream binary framing (used by
             both converse-stream and invoke-with-response-stream) into
             the JSON payload of each event, by delegating the
             length-prefixed frame parsing to
             aws/protocol/eventstream and base64-decoding the nested
             "bytes" field Bedrock wraps each chunk's JSON in.
Root Cause:  Bedrock streaming responses are not bare NDJSON over
             HTTP; every chunk is one eventstream message whose
             payload is itself a small JSON envelope.
Context:     Used by both converse.go and invoke.go so the two
             translators only deal with already-decoded chunk JSON.
Suitability: L3 — framing bugs here would silently corrupt every
             streamed response, so this stays isolated and minimal.
──────────────────────────────────────────────────────────────
*/
package stream

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
)

// eventStreamEnvelope is the JSON payload of one Bedrock event-stream
// message: a base64 "bytes" field wrapping the actual chunk JSON.
type eventStreamEnvelope struct {
	Bytes string `json:"bytes"`
}

// decodeEventStreamChunks reads successive eventstream messages from r
// and calls handle with each chunk's decoded JSON payload, until r is
// exhausted or handle returns an error.
func decodeEventStreamChunks(r io.Reader, handle func(chunk map[string]interface{}) error) error {
	decoder := eventstream.NewDecoder(r)
	for {
		msg, err := decoder.Decode(nil)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("stream: decode event frame: %w", err)
		}

		eventType := headerValue(msg.Headers, ":event-type")
		if eventType == "exception" || eventType == "modelStreamErrorException" {
			return fmt.Errorf("stream: upstream event error: %s", string(msg.Payload))
		}

		var envelope eventStreamEnvelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			return fmt.Errorf("stream: decode event envelope: %w", err)
		}
		raw, err := base64.StdEncoding.DecodeString(envelope.Bytes)
		if err != nil {
			return fmt.Errorf("stream: decode event base64 payload: %w", err)
		}

		var chunk map[string]interface{}
		if err := json.Unmarshal(raw, &chunk); err != nil {
			return fmt.Errorf("stream: decode event chunk json: %w", err)
		}
		if err := handle(chunk); err != nil {
			return err
		}
	}
}

func headerValue(headers eventstream.Headers, name string) string {
	for _, h := range headers {
		if h.Name == name {
			if s, ok := h.Value.Get().(string); ok {
				return s
			}
		}
	}
	return ""
}
