/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L2
Logic:       Request-scoped timeout middleware using context
             cancellation, adapted from the teacher's
             middleware/timeout.go. The teacher resolved a timeout
             per upstream provider; this core has exactly one
             upstream (Bedrock/S3), so the per-provider config
             lookup collapses to a single DefaultUpstreamTimeout,
             still overridable per-request via header.
Root Cause:  A multipart file upload or a long Converse stream
             must not be bound by the same deadline as a small
             embeddings call without a way for the caller to ask
             for more room.
Context:     Mounted ahead of every /v1 route, the streaming chat
             path included; a stream still open when the deadline
             fires has its further writes refused.
Suitability: L2 — the same context-cancellation pattern as the
             teacher's, trimmed to one upstream.
──────────────────────────────────────────────────────────────
*/
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlfredDev/alfred-bedrock-core/internal/config"
)

// maxClientTimeout caps the client-requested X-Alfred-Timeout-Seconds header.
const maxClientTimeout = 5 * time.Minute

// Timeout returns middleware applying cfg.DefaultUpstreamTimeout to the
// request context, or a caller-supplied X-Alfred-Timeout-Seconds override
// capped at maxClientTimeout.
func Timeout(logger zerolog.Logger, cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timeout := resolveTimeout(r, cfg)
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			tw := &timeoutWriter{ResponseWriter: w}

			go func() {
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				tw.mu.Lock()
				tw.timedOut = true
				if !tw.wroteHeader {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_ = json.NewEncoder(w).Encode(map[string]interface{}{
						"error": map[string]interface{}{
							"type":    "timeout_error",
							"message": "request timed out after " + timeout.String(),
						},
					})
					tw.wroteHeader = true
				}
				tw.mu.Unlock()

				logger.Warn().Str("path", r.URL.Path).Dur("timeout", timeout).Msg("request timed out")
				<-done
			}
		})
	}
}

func resolveTimeout(r *http.Request, cfg *config.Config) time.Duration {
	if headerVal := r.Header.Get("X-Alfred-Timeout-Seconds"); headerVal != "" {
		if seconds, err := strconv.Atoi(headerVal); err == nil && seconds > 0 {
			t := time.Duration(seconds) * time.Second
			if t > maxClientTimeout {
				t = maxClientTimeout
			}
			return t
		}
	}
	return cfg.DefaultUpstreamTimeout
}

// timeoutWriter guards the ResponseWriter against writes from a handler
// goroutine still running after the deadline fires.
type timeoutWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, context.DeadlineExceeded
	}
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

func (tw *timeoutWriter) Flush() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
