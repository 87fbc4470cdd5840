package httpapi

import (
	"net/http"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/oprouter"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// Completions handles the legacy POST /v1/completions.
func (s *Server) Completions(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	var req schema.CompletionRequest
	if err := decodeJSON(w, r, s.Config.MaxBodyBytes, &req); err != nil {
		writeError(w, target.Provider, err)
		return
	}
	if req.Model == "" {
		req.Model = target.BedrockModel
	}
	if req.Model == "" {
		writeError(w, target.Provider, errmap.Validation("model is required"))
		return
	}
	target.BedrockModel = req.Model
	if req.Prompt == "" {
		writeError(w, target.Provider, errmap.Validation("prompt must not be empty"))
		return
	}

	resp, err := s.Client.DispatchCompletion(r.Context(), &req, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
