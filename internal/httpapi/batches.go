/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Batch job control-plane routes: create/list/get/cancel,
             thin wrappers over oprouter's Dispatch* job functions.
Root Cause:  Five routes sharing one dependency and one error-mapping
             shape; no handler here is more than decode-dispatch-respond.
Context:     Mounted under /v1/batches in router.go.
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

// CreateBatch handles POST /v1/batches.
func (s *Server) CreateBatch(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	var req schema.BatchCreateRequest
	if err := decodeJSON(w, r, s.Config.MaxBodyBytes, &req); err != nil {
		writeError(w, target.Provider, err)
		return
	}
	if req.InputFileID == "" {
		writeError(w, target.Provider, errmap.Validation("input_file_id is required"))
		return
	}
	job, err := s.Client.DispatchBatchCreate(r.Context(), &req, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetBatch handles GET /v1/batches/{id}.
func (s *Server) GetBatch(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	job, err := s.Client.DispatchBatchGet(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListBatches handles GET /v1/batches.
func (s *Server) ListBatches(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	jobs, err := s.Client.DispatchBatchList(r.Context(), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"object": "list", "data": jobs})
}

// CancelBatch handles POST /v1/batches/{id}/cancel.
func (s *Server) CancelBatch(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	job, err := s.Client.DispatchBatchCancel(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetBatchOutput handles GET /v1/batches/{id}/output, streaming the
// batch's output file content transformed into canonical output rows.
func (s *Server) GetBatchOutput(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	job, err := s.Client.DispatchBatchGet(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	if job.OutputFileID == "" {
		writeError(w, target.Provider, errmap.Validation("batch has no output file yet"))
		return
	}
	key := s3KeyFromURI(job.OutputFileID)
	s3c, err := s.s3Client(r, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	body, err := s3c.RetrieveContent(r.Context(), key, target.BedrockModel)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	streamCopy(w, body)
}
