/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       `POST /v1/embeddings` and `POST /v1/images/generations` —
             decode, resolve target, dispatch, respond. Both are
             always-unary operations, so neither handler needs the
             streaming branch chat.go has.
Root Cause:  Kept together since both are a three-line dispatch over
             the same oprouter.Client shape.
Context:     Mirrors handler/proxy.go's Embeddings handler structure.
Suitability: L3.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"net/http"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/oprouter"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// Embeddings handles POST /v1/embeddings.
func (s *Server) Embeddings(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	var req schema.EmbeddingsRequest
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
	if len(schema.InputToStrings(req.Input)) == 0 {
		writeError(w, target.Provider, errmap.Validation("input must not be empty"))
		return
	}

	resp, err := s.Client.DispatchEmbeddings(r.Context(), &req, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ImageGenerations handles POST /v1/images/generations.
func (s *Server) ImageGenerations(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	var req schema.ImageGenerationRequest
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

	resp, err := s.Client.DispatchImageGeneration(r.Context(), &req, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
