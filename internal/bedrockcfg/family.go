/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Model-family detection for Bedrock model IDs. Decides
             whether a model is Converse-eligible or invoke-only,
             and which prompt/response shape its invoke family uses.
Root Cause:  Bedrock exposes one Converse API for most chat models
             but several legacy per-vendor invoke shapes for the
             rest; callers need a single lookup instead of scattered
             string matching.
Context:     Consulted by the operation router to pick an endpoint
             path and by bedrockcfg to pick a FunctionConfig.
Suitability: L3 — table-driven string matching, low complexity.
──────────────────────────────────────────────────────────────
*/
package bedrockcfg

import "strings"

// Family identifies the request/response shape a Bedrock model uses.
type Family string

const (
	FamilyAnthropicConverse Family = "anthropic-converse"
	FamilyCohereConverse    Family = "cohere-converse"
	FamilyAmazonConverse    Family = "amazon-converse"
	FamilyMetaConverse      Family = "meta-converse"
	FamilyMistralConverse   Family = "mistral-converse"

	FamilyCohereInvoke   Family = "cohere-invoke"
	FamilyAI21Invoke     Family = "ai21-invoke"
	FamilyTitanInvoke    Family = "titan-invoke"
	FamilyLlama2Invoke   Family = "llama2-invoke"
	FamilyLlama3Invoke   Family = "llama3-invoke"
	FamilyMistralInvoke  Family = "mistral-invoke"
	FamilyStabilityV1    Family = "stability-v1"
	FamilyStabilityV2    Family = "stability-v2"
	FamilyTitanEmbed     Family = "titan-embed"
	FamilyCohereEmbed    Family = "cohere-embed"
)

// invokeOnlyModels lists the model IDs spec.md §4.3 calls out explicitly
// as invoke-only, i.e. not reachable through Converse.
var invokeOnlyModels = map[string]Family{
	"cohere.command-text-v14":  FamilyCohereInvoke,
	"cohere.command-light-text-v14": FamilyCohereInvoke,
	"ai21.j2-mid-v1":           FamilyAI21Invoke,
	"ai21.j2-ultra-v1":         FamilyAI21Invoke,
}

// IsConverseEligible reports whether modelID should be invoked through
// the Converse API rather than a legacy invoke-family endpoint.
func IsConverseEligible(modelID string) bool {
	if _, ok := invokeOnlyModels[modelID]; ok {
		return false
	}
	switch {
	case strings.HasPrefix(modelID, "amazon.titan-text"),
		strings.HasPrefix(modelID, "amazon.titan-embed"),
		strings.HasPrefix(modelID, "meta.llama2"),
		strings.HasPrefix(modelID, "mistral.mistral-7b"),
		strings.HasPrefix(modelID, "stability."):
		return false
	default:
		return true
	}
}

// DetectFamily maps a model ID to the Family used to pick a FunctionConfig
// and response transform.
func DetectFamily(modelID string) Family {
	if f, ok := invokeOnlyModels[modelID]; ok {
		return f
	}
	switch {
	case strings.HasPrefix(modelID, "anthropic."):
		if IsConverseEligible(modelID) {
			return FamilyAnthropicConverse
		}
		return FamilyAnthropicConverse
	case strings.HasPrefix(modelID, "cohere.command-r"):
		return FamilyCohereConverse
	case strings.HasPrefix(modelID, "cohere.embed"):
		return FamilyCohereEmbed
	case strings.HasPrefix(modelID, "amazon.titan-text"):
		return FamilyTitanInvoke
	case strings.HasPrefix(modelID, "amazon.titan-embed"):
		return FamilyTitanEmbed
	case strings.HasPrefix(modelID, "amazon."):
		return FamilyAmazonConverse
	case strings.HasPrefix(modelID, "meta.llama3"):
		return FamilyLlama3Invoke
	case strings.HasPrefix(modelID, "meta.llama2"):
		return FamilyLlama2Invoke
	case strings.HasPrefix(modelID, "meta."):
		return FamilyMetaConverse
	case strings.HasPrefix(modelID, "mistral.mistral-7b"):
		return FamilyMistralInvoke
	case strings.HasPrefix(modelID, "mistral."):
		return FamilyMistralConverse
	case strings.HasPrefix(modelID, "stability.stable-diffusion-xl-v1"):
		return FamilyStabilityV1
	case strings.HasPrefix(modelID, "stability."):
		return FamilyStabilityV2
	default:
		return FamilyAnthropicConverse
	}
}
