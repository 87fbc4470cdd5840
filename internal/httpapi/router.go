/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Mounts every handler under /v1 behind the teacher's
             middleware chain (RequestID → Recoverer → request
             logger → response headers → timeout), trimmed to this
             core's single AWS upstream: no CORS/auth/rate-limit/
             routing-engine/semantic-cache/analytics/policy/
             intelligence layers, since this core has no tenant
             store to authenticate against or multi-provider
             traffic to arbitrate between (spec.md's Non-goals).
Root Cause:  Every handler needs the same request-id/recover/log/
             timeout wrapping; centralizing the chain keeps new
             routes from silently skipping it.
Context:     main.go calls NewRouter(server) and passes the result
             straight to http.Server.Handler.
Suitability: L3 — route wiring, easy to get a path or verb wrong.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AlfredDev/alfred-bedrock-core/internal/middleware"
)

// NewRouter builds the chi.Router exposing every operation in spec.md §6.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(s.Logger))
	r.Use(middleware.ResponseHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"alfred-bedrock-core"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.Logger, s.Config))

		r.Post("/chat/completions", s.ChatCompletions)
		r.Post("/completions", s.Completions)
		r.Post("/embeddings", s.Embeddings)
		r.Post("/images/generations", s.ImageGenerations)

		r.Route("/files", func(r chi.Router) {
			r.Post("/", s.UploadFile)
			r.Get("/", s.ListFiles)
			r.Get("/{id}", s.GetFile)
			r.Get("/{id}/content", s.GetFileContent)
			r.Delete("/{id}", s.DeleteFile)
		})

		r.Route("/batches", func(r chi.Router) {
			r.Post("/", s.CreateBatch)
			r.Get("/", s.ListBatches)
			r.Get("/{id}", s.GetBatch)
			r.Get("/{id}/output", s.GetBatchOutput)
			r.Post("/{id}/cancel", s.CancelBatch)
		})

		r.Route("/fine_tuning/jobs", func(r chi.Router) {
			r.Post("/", s.CreateFineTuningJob)
			r.Get("/", s.ListFineTuningJobs)
			r.Get("/{id}", s.GetFineTuningJob)
			r.Post("/{id}/cancel", s.CancelFineTuningJob)
		})
	})

	return r
}
