/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Fine-tuning job control-plane routes, the mirror image of
             batches.go over oprouter's Dispatch* fine-tune functions.
Root Cause:  Symmetric to batch job routes per spec.md §4.3's
             "Fine-tune: symmetric under /model-customization-job(s)".
Context:     Mounted under /v1/fine_tuning/jobs in router.go.
Suitability: L3.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/oprouter"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// CreateFineTuningJob handles POST /v1/fine_tuning/jobs.
func (s *Server) CreateFineTuningJob(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	var req schema.FineTuneCreateRequest
	if err := decodeJSON(w, r, s.Config.MaxBodyBytes, &req); err != nil {
		writeError(w, target.Provider, err)
		return
	}
	if req.TrainingFile == "" {
		writeError(w, target.Provider, errmap.Validation("training_file is required"))
		return
	}
	if req.Model == "" {
		req.Model = target.BedrockModel
	}
	if req.Model == "" {
		writeError(w, target.Provider, errmap.Validation("model is required"))
		return
	}
	job, err := s.Client.DispatchFineTuneCreate(r.Context(), &req, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetFineTuningJob handles GET /v1/fine_tuning/jobs/{id}.
func (s *Server) GetFineTuningJob(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	job, err := s.Client.DispatchFineTuneGet(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListFineTuningJobs handles GET /v1/fine_tuning/jobs.
func (s *Server) ListFineTuningJobs(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	jobs, err := s.Client.DispatchFineTuneList(r.Context(), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"object": "list", "data": jobs})
}

// CancelFineTuningJob handles POST /v1/fine_tuning/jobs/{id}/cancel.
func (s *Server) CancelFineTuningJob(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	job, err := s.Client.DispatchFineTuneCancel(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
