/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Shared JSON encode/decode and error-envelope writing for
             every handler in this package, adapted from the teacher's
             handler/proxy.go writeError helper and body-limit pattern.
Root Cause:  Every handler needs the identical decode-validate-respond
             shape; keeping it in one helper file avoids the drift the
             teacher's own handler/proxy.go and handler/stream.go show
             between each other.
Context:     Handlers in this package write JSON bodies and error
             envelopes through writeJSON/writeError; streamed file
             and batch-output bodies, and the chat handler's own body
             read, bypass these helpers.
Suitability: L3 — thin, repo-wide plumbing.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
)

// s3KeyFromURI strips an `s3://bucket/` prefix off uri, returning the bare
// object key oprouter's job dispatch and file handlers store as the
// canonical file id / input/output file reference.
func s3KeyFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func streamCopy(w http.ResponseWriter, r io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to the canonical ErrorEnvelope and an HTTP status,
// using provider as the fallback provider label when err carries none.
func writeError(w http.ResponseWriter, provider string, err error) {
	e := errmap.As(provider, err)
	if e.Provider == "" {
		e.Provider = provider
	}
	writeJSON(w, e.Status, errmap.Envelope(e))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errmap.Validation("invalid request body: %v", err)
	}
	return nil
}
