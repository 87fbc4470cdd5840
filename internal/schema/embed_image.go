package schema

// EmbeddingsRequest is the canonical embeddings request body.
type EmbeddingsRequest struct {
	Model     string      `json:"model"`
	Input     interface{} `json:"input"` // string or []string
	InputType string      `json:"input_type,omitempty"`
	User      string      `json:"user,omitempty"`
}

// EmbeddingsResponse is the canonical embeddings response body.
type EmbeddingsResponse struct {
	Object string          `json:"object"`
	Data   []EmbeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  EmbeddingsUsage `json:"usage"`
}

// EmbeddingData is a single embedding vector and its input index.
type EmbeddingData struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingsUsage reports token accounting for an embeddings call.
type EmbeddingsUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// InputToStrings normalizes EmbeddingsRequest.Input to a string slice.
func InputToStrings(input interface{}) []string {
	switch v := input.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ImageGenerationRequest is the canonical image generation request body.
type ImageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n,omitempty"`
	Size   string `json:"size,omitempty"`
}

// ImageGenerationResponse is the canonical image generation response body.
type ImageGenerationResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

// ImageData is a single generated image, base64-encoded.
type ImageData struct {
	B64JSON string `json:"b64_json"`
}
