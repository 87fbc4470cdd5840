/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Dispatches embeddings and image-generation calls the
             same way chat.go dispatches chat completions: build
             request via bedrockcfg, sign and send, transform the
             response, per spec.md §4.4/§4.5.
Root Cause:  Embeddings and image generation share the invoke-style
             single-request/single-response shape with invoke-family
             chat, so they reuse the same Client.do plumbing rather
             than a parallel HTTP path.
Context:     Called from internal/httpapi's embeddings and image
             generation handlers.
Suitability: L3 — orchestration, no new algorithmic surface.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"context"
	"encoding/json"

	"github.com/AlfredDev/alfred-bedrock-core/internal/bedrockcfg"
	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// DispatchEmbeddings issues a Bedrock invoke call for a Titan or Cohere
// embedding model and returns the canonical response.
func (c *Client) DispatchEmbeddings(ctx context.Context, req *schema.EmbeddingsRequest, t ProviderTarget) (*schema.EmbeddingsResponse, error) {
	family := bedrockcfg.DetectFamily(t.BedrockModel)
	ep, err := BuildEndpoint(OpEmbeddings, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}

	tree, err := bedrockcfg.BuildEmbeddingsRequest(req, family)
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	body, err := json.Marshal(map[string]interface{}(tree))
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}

	respBody, _, err := c.doJSON(ctx, ep, t, body)
	if err != nil {
		return nil, err
	}

	out, err := bedrockcfg.TransformEmbeddingsResponse(respBody, family, t.BedrockModel)
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	return out, nil
}

// DispatchImageGeneration issues a Bedrock invoke call for a Stability
// model and returns the canonical response.
func (c *Client) DispatchImageGeneration(ctx context.Context, req *schema.ImageGenerationRequest, t ProviderTarget) (*schema.ImageGenerationResponse, error) {
	family := bedrockcfg.DetectFamily(t.BedrockModel)
	ep, err := BuildEndpoint(OpImageGeneration, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}

	tree, err := bedrockcfg.BuildImageRequest(req, family)
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	body, err := json.Marshal(map[string]interface{}(tree))
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}

	respBody, _, err := c.doJSON(ctx, ep, t, body)
	if err != nil {
		return nil, err
	}

	out, err := bedrockcfg.TransformImageResponse(respBody, family, nowUnix())
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	return out, nil
}
