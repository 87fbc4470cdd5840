/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Embeddings (Titan, Cohere) and image generation (Stability
             V1/V2) request/response transforms, per spec.md §4.5.
Root Cause:  Embeddings and image generation each have a single
             invocation shape per family rather than a long-tail of
             model-specific prompt formats, so they get one file.
Context:     Selected by the operation router for the embed and
             generate_image canonical operations.
Suitability: L3 — small, mechanical mappings.
──────────────────────────────────────────────────────────────
*/
package bedrockcfg

import (
	"fmt"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
	"github.com/AlfredDev/alfred-bedrock-core/internal/transform"
)

// BuildEmbeddingsRequest renders a canonical embeddings request into a
// Titan or Cohere embed body.
func BuildEmbeddingsRequest(req *schema.EmbeddingsRequest, family Family) (transform.Tree, error) {
	inputs := schema.InputToStrings(req.Input)
	switch family {
	case FamilyTitanEmbed:
		if len(inputs) != 1 {
			return nil, fmt.Errorf("bedrockcfg: titan embed accepts exactly one input, got %d", len(inputs))
		}
		return transform.Tree{"inputText": inputs[0]}, nil
	case FamilyCohereEmbed:
		texts := make([]interface{}, len(inputs))
		for i, s := range inputs {
			texts[i] = s
		}
		return transform.Tree{"texts": texts, "input_type": "search_document"}, nil
	default:
		return nil, fmt.Errorf("bedrockcfg: %s is not an embeddings family", family)
	}
}

// TransformEmbeddingsResponse builds a canonical EmbeddingsResponse from
// a decoded embed body.
func TransformEmbeddingsResponse(body map[string]interface{}, family Family, model string) (*schema.EmbeddingsResponse, error) {
	switch family {
	case FamilyTitanEmbed:
		vec, _ := body["embedding"].([]interface{})
		tokens := int(asFloatOr(body["inputTextTokenCount"], 0))
		return &schema.EmbeddingsResponse{
			Object: "list",
			Model:  model,
			Data:   []schema.EmbeddingData{{Object: "embedding", Index: 0, Embedding: toFloat64Slice(vec)}},
			Usage:  schema.EmbeddingsUsage{PromptTokens: tokens, TotalTokens: tokens},
		}, nil
	case FamilyCohereEmbed:
		vecs, _ := body["embeddings"].([]interface{})
		data := make([]schema.EmbeddingData, len(vecs))
		for i, v := range vecs {
			row, _ := v.([]interface{})
			data[i] = schema.EmbeddingData{Object: "embedding", Index: i, Embedding: toFloat64Slice(row)}
		}
		return &schema.EmbeddingsResponse{
			Object: "list",
			Model:  model,
			Data:   data,
		}, nil
	default:
		return nil, fmt.Errorf("bedrockcfg: %s is not an embeddings family", family)
	}
}

func asFloatOr(v interface{}, def float64) float64 {
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return f
}

func toFloat64Slice(v []interface{}) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		f, _ := x.(float64)
		out[i] = f
	}
	return out
}

// BuildImageRequest renders a canonical image generation request into a
// Stability V1 or V2 body.
func BuildImageRequest(req *schema.ImageGenerationRequest, family Family) (transform.Tree, error) {
	switch family {
	case FamilyStabilityV1:
		n := req.N
		if n == 0 {
			n = 1
		}
		return transform.Tree{
			"text_prompts": []interface{}{map[string]interface{}{"text": req.Prompt, "weight": 1.0}},
			"samples":      n,
		}, nil
	case FamilyStabilityV2:
		return transform.Tree{"prompt": req.Prompt}, nil
	default:
		return nil, fmt.Errorf("bedrockcfg: %s is not an image generation family", family)
	}
}

// TransformImageResponse builds a canonical ImageGenerationResponse from
// a decoded Stability body.
func TransformImageResponse(body map[string]interface{}, family Family, created int64) (*schema.ImageGenerationResponse, error) {
	switch family {
	case FamilyStabilityV1:
		artifacts, _ := body["artifacts"].([]interface{})
		data := make([]schema.ImageData, 0, len(artifacts))
		for _, a := range artifacts {
			m, ok := a.(map[string]interface{})
			if !ok {
				continue
			}
			b64, _ := m["base64"].(string)
			data = append(data, schema.ImageData{B64JSON: b64})
		}
		return &schema.ImageGenerationResponse{Created: created, Data: data}, nil
	case FamilyStabilityV2:
		images, _ := body["images"].([]interface{})
		data := make([]schema.ImageData, 0, len(images))
		for _, img := range images {
			s, ok := img.(string)
			if !ok {
				continue
			}
			data = append(data, schema.ImageData{B64JSON: s})
		}
		return &schema.ImageGenerationResponse{Created: created, Data: data}, nil
	default:
		return nil, fmt.Errorf("bedrockcfg: %s is not an image generation family", family)
	}
}
