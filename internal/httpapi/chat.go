/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       `POST /v1/chat/completions` — decodes the canonical
             ChatRequest, resolves the backend ProviderTarget from
             headers, and dispatches unary or streaming depending on
             `stream`, per spec.md §6's status-code table.
Root Cause:  This is the primary entry point exercising the transform
             engine, Converse/invoke routing, and the stream
             translator end to end.
Context:     Model validation (non-empty model/messages) happens here
             before any upstream call, matching the teacher's
             handler/proxy.go ChatCompletions validation-before-dispatch
             shape.
Suitability: L3 — the handler layer's busiest route.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/oprouter"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// ChatCompletions handles POST /v1/chat/completions.
func (s *Server) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.Config.MaxBodyBytes))
	if err != nil {
		writeError(w, target.Provider, errmap.Validation("request body too large or unreadable"))
		return
	}
	var req schema.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, target.Provider, errmap.Validation("invalid chat completion request: %v", err))
		return
	}
	req.Raw = raw
	if req.Model == "" {
		req.Model = target.BedrockModel
	}
	if req.Model == "" {
		writeError(w, target.Provider, errmap.Validation("model is required"))
		return
	}
	target.BedrockModel = req.Model
	if len(req.Messages) == 0 {
		writeError(w, target.Provider, errmap.Validation("messages must not be empty"))
		return
	}

	if req.Stream {
		if err := s.Client.DispatchChatCompletionStream(r.Context(), &req, target, w); err != nil {
			s.Logger.Error().Err(err).Str("model", req.Model).Msg("chat completion stream failed")
			writeError(w, target.Provider, err)
		}
		return
	}

	resp, err := s.Client.DispatchChatCompletion(r.Context(), &req, target)
	if err != nil {
		s.Logger.Error().Err(err).Str("model", req.Model).Msg("chat completion failed")
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
