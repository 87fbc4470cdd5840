/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Canonical chat request -> Bedrock Converse request body,
             and Converse response -> canonical chat response, per the
             field mapping table for messages/tools/tool_choice/
             inferenceConfig/additionalModelRequestFields.
Root Cause:  Converse is the one Bedrock API shape shared by most
             chat-capable model families; this is the highest-traffic
             path through the gateway.
Context:     Selected by the operation router whenever
             bedrockcfg.IsConverseEligible(modelID) is true.
Suitability: L3 — content-block coalescing has enough edge cases to
             warrant careful, directly-tested code rather than a
             fully generic interpreter.
──────────────────────────────────────────────────────────────
*/
package bedrockcfg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
	"github.com/AlfredDev/alfred-bedrock-core/internal/transform"
)

// familiesWithoutToolCachePoints excludes the Amazon family from tool
// cache-point markers, per spec.md §4.4.
var familiesWithoutToolCachePoints = map[Family]bool{
	FamilyAmazonConverse: true,
}

// BuildConverseRequest turns a canonical chat request into a Bedrock
// Converse request body. The message/content coalescing is not expressed
// as a table of FunctionConfig field rules because it depends on
// cross-message state (role coalescing, cache-point insertion) that a
// flat field-to-path mapping can't express cleanly; the scalar knobs
// (inferenceConfig, guardrail, additionalModelRequestFields) go through
// transform.Apply so they follow the same engine as every other config.
func BuildConverseRequest(req *schema.ChatRequest, family Family) (transform.Tree, error) {
	system, messages, err := buildConverseMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	target := transform.Tree{"messages": messages}
	if len(system) > 0 {
		target["system"] = system
	}

	if len(req.Tools) > 0 {
		toolConfig, err := buildToolConfig(req, family)
		if err != nil {
			return nil, err
		}
		target["toolConfig"] = toolConfig
	}

	inferenceCfg := buildInferenceConfig(req)
	if len(inferenceCfg) > 0 {
		target["inferenceConfig"] = inferenceCfg
	}

	if additional := buildAdditionalModelRequestFields(req, family); len(additional) > 0 {
		target["additionalModelRequestFields"] = additional
	}

	if req.Guardrail != nil {
		target["guardrailConfig"] = req.Guardrail
	}

	return target, nil
}

func buildInferenceConfig(req *schema.ChatRequest) map[string]interface{} {
	cfg := map[string]interface{}{}
	if req.MaxTokens != nil {
		cfg["maxTokens"] = *req.MaxTokens
	} else if req.MaxCompletion != nil {
		cfg["maxTokens"] = *req.MaxCompletion
	}
	if req.Temperature != nil {
		cfg["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		cfg["topP"] = *req.TopP
	}
	if len(req.Stop) > 0 {
		cfg["stopSequences"] = req.Stop
	}
	return cfg
}

func buildAdditionalModelRequestFields(req *schema.ChatRequest, family Family) map[string]interface{} {
	extra := map[string]interface{}{}
	if req.TopK != nil {
		extra["top_k"] = *req.TopK
	}
	if req.Thinking != nil {
		extra["thinking"] = req.Thinking
	}
	switch family {
	case FamilyCohereConverse:
		if req.FrequencyPenalty != nil {
			extra["frequency_penalty"] = *req.FrequencyPenalty
		}
		if req.PresencePenalty != nil {
			extra["presence_penalty"] = *req.PresencePenalty
		}
		if req.LogitBias != nil {
			extra["logit_bias"] = req.LogitBias
		}
		if req.N != nil {
			extra["n"] = *req.N
		}
	}
	if family == FamilyAnthropicConverse {
		extra["anthropic_version"] = "bedrock-2023-05-31"
	}
	return extra
}

// validateToolParameters rejects a tool whose `parameters` field isn't
// itself a valid JSON Schema, catching a malformed tool definition before
// it's forwarded to Bedrock as an inputSchema rather than surfacing as an
// opaque upstream ValidationException.
func validateToolParameters(name string, parameters json.RawMessage) error {
	if len(parameters) == 0 {
		return nil
	}
	var doc interface{}
	if err := json.Unmarshal(parameters, &doc); err != nil {
		return fmt.Errorf("tool %q: decode parameters: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name+"#/parameters", doc); err != nil {
		return fmt.Errorf("tool %q: invalid parameters schema: %w", name, err)
	}
	if _, err := c.Compile(name + "#/parameters"); err != nil {
		return fmt.Errorf("tool %q: invalid parameters schema: %w", name, err)
	}
	return nil
}

func buildToolConfig(req *schema.ChatRequest, family Family) (map[string]interface{}, error) {
	tools := make([]interface{}, 0, len(req.Tools))
	for _, tool := range req.Tools {
		if err := validateToolParameters(tool.Function.Name, tool.Function.Parameters); err != nil {
			return nil, err
		}
		spec := map[string]interface{}{
			"name":        tool.Function.Name,
			"description": tool.Function.Description,
			"inputSchema": map[string]interface{}{"json": tool.Function.Parameters},
		}
		tools = append(tools, map[string]interface{}{"toolSpec": spec})
		if tool.Function.CacheControl != nil && !familiesWithoutToolCachePoints[family] {
			tools = append(tools, map[string]interface{}{"cachePoint": map[string]interface{}{"type": "default"}})
		}
	}

	toolConfig := map[string]interface{}{"tools": tools}
	switch tc := req.ToolChoice.(type) {
	case string:
		switch tc {
		case "auto":
			toolConfig["toolChoice"] = map[string]interface{}{"auto": map[string]interface{}{}}
		case "required", "any":
			toolConfig["toolChoice"] = map[string]interface{}{"any": map[string]interface{}{}}
		}
	case map[string]interface{}:
		if fn, ok := tc["function"].(map[string]interface{}); ok {
			toolConfig["toolChoice"] = map[string]interface{}{"tool": map[string]interface{}{"name": fn["name"]}}
		}
	}
	return toolConfig, nil
}

// buildConverseMessages splits canonical messages into Converse's system
// block list and the coalesced messages list, per spec.md §4.4: adjacent
// same-role user/tool messages are coalesced, system messages stripped
// out into a separate list.
func buildConverseMessages(msgs []schema.ChatMessage) (system []interface{}, out []interface{}, err error) {
	var pending *converseMsg

	flush := func() {
		if pending != nil {
			out = append(out, pending.toMap())
			pending = nil
		}
	}

	for _, m := range msgs {
		switch m.Role {
		case schema.RoleSystem:
			for _, block := range m.ContentBlocks() {
				if block.Type == "text" {
					system = append(system, map[string]interface{}{"text": block.Text})
				}
			}
			continue
		case schema.RoleTool:
			content, convErr := toolResultContent(m)
			if convErr != nil {
				return nil, nil, convErr
			}
			role := "user"
			if pending != nil && pending.role == role {
				pending.content = append(pending.content, content)
				continue
			}
			flush()
			pending = &converseMsg{role: role, content: []interface{}{content}}
			continue
		}

		role := string(m.Role)
		var blocks []interface{}
		if len(m.ToolCalls) > 0 {
			for _, tc := range m.ToolCalls {
				var input map[string]interface{}
				if tc.Function.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
						return nil, nil, fmt.Errorf("bedrockcfg: tool call %s arguments not valid JSON: %w", tc.ID, err)
					}
				}
				blocks = append(blocks, map[string]interface{}{
					"toolUse": map[string]interface{}{
						"toolUseId": tc.ID,
						"name":      tc.Function.Name,
						"input":     input,
					},
				})
			}
		}
		for _, block := range m.ContentBlocks() {
			mapped, cache, convErr := mapContentBlock(block)
			if convErr != nil {
				return nil, nil, convErr
			}
			if mapped != nil {
				blocks = append(blocks, mapped)
			}
			if cache {
				blocks = append(blocks, map[string]interface{}{"cachePoint": map[string]interface{}{"type": "default"}})
			}
		}

		if pending != nil && pending.role == role {
			pending.content = append(pending.content, blocks...)
			continue
		}
		flush()
		pending = &converseMsg{role: role, content: blocks}
	}
	flush()
	return system, out, nil
}

type converseMsg struct {
	role    string
	content []interface{}
}

func (m *converseMsg) toMap() map[string]interface{} {
	return map[string]interface{}{"role": m.role, "content": m.content}
}

func toolResultContent(m schema.ChatMessage) (interface{}, error) {
	var content []interface{}
	for _, block := range m.ContentBlocks() {
		if block.Type == "text" && block.Text != "" {
			content = append(content, map[string]interface{}{"text": block.Text})
		}
	}
	if content == nil {
		content = []interface{}{}
	}
	return map[string]interface{}{
		"toolResult": map[string]interface{}{
			"toolUseId": m.ToolCallID,
			"content":   content,
		},
	}, nil
}

// mapContentBlock converts one canonical content block to its Converse
// shape, reporting whether a cachePoint marker should follow it.
func mapContentBlock(block schema.ContentBlock) (mapped interface{}, cache bool, err error) {
	cache = block.CacheControl != nil

	switch block.Type {
	case "text":
		return map[string]interface{}{"text": block.Text}, cache, nil
	case "thinking":
		return map[string]interface{}{
			"reasoningContent": map[string]interface{}{
				"reasoningText": map[string]interface{}{"text": block.Thinking, "signature": block.Signature},
			},
		}, cache, nil
	case "redacted_thinking":
		return map[string]interface{}{
			"reasoningContent": map[string]interface{}{"redactedContent": block.Data},
		}, cache, nil
	case "image_url":
		return mapImageBlock(block)
	case "file":
		return mapFileBlock(block)
	default:
		return nil, false, fmt.Errorf("bedrockcfg: unsupported content block type %q", block.Type)
	}
}

func mapImageBlock(block schema.ContentBlock) (interface{}, bool, error) {
	cache := block.CacheControl != nil
	if block.ImageURL == nil {
		return nil, cache, fmt.Errorf("bedrockcfg: image_url block missing image_url")
	}
	mime, data, err := decodeDataURL(block.ImageURL.URL)
	if err != nil {
		return nil, cache, err
	}
	if strings.HasPrefix(mime, "image/") {
		format := strings.TrimPrefix(mime, "image/")
		return map[string]interface{}{
			"image": map[string]interface{}{
				"format": format,
				"source": map[string]interface{}{"bytes": data},
			},
		}, cache, nil
	}
	format := documentFormatFor(mime)
	return map[string]interface{}{
		"document": map[string]interface{}{
			"format": format,
			"name":   "document",
			"source": map[string]interface{}{"bytes": data},
		},
	}, cache, nil
}

func mapFileBlock(block schema.ContentBlock) (interface{}, bool, error) {
	cache := block.CacheControl != nil
	if block.File == nil {
		return nil, cache, fmt.Errorf("bedrockcfg: file block missing file")
	}
	name := block.File.Filename
	if name == "" {
		name = "document"
	}
	format := documentFormatFromFilename(name)
	if block.File.FileURL != "" {
		return map[string]interface{}{
			"document": map[string]interface{}{
				"format": format,
				"name":   name,
				"source": map[string]interface{}{"s3Location": map[string]interface{}{"uri": block.File.FileURL}},
			},
		}, cache, nil
	}
	_, data, err := decodeDataURL(block.File.FileData)
	if err != nil {
		return nil, cache, err
	}
	return map[string]interface{}{
		"document": map[string]interface{}{
			"format": format,
			"name":   name,
			"source": map[string]interface{}{"bytes": data},
		},
	}, cache, nil
}

func documentFormatFor(mime string) string {
	switch mime {
	case "application/pdf":
		return "pdf"
	case "text/csv":
		return "csv"
	case "text/plain":
		return "txt"
	default:
		return "pdf"
	}
}

func documentFormatFromFilename(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "txt"
	}
	return strings.ToLower(name[idx+1:])
}

// decodeDataURL splits a `data:<mime>;base64,<payload>` URL into its MIME
// type and raw base64 payload (Converse wants the base64 string passed
// through, not decoded bytes, so the "data" return is the payload as-is).
func decodeDataURL(raw string) (mime string, data string, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", fmt.Errorf("bedrockcfg: expected a data: URL, got %q", truncate(raw, 32))
	}
	rest := raw[len(prefix):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", "", fmt.Errorf("bedrockcfg: malformed data URL")
	}
	meta := rest[:comma]
	payload := rest[comma+1:]
	mime = strings.TrimSuffix(meta, ";base64")
	return mime, payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
