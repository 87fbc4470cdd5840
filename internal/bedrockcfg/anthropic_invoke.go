/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Canonical chat request -> Anthropic's native InvokeModel
             body (anthropic_version/messages/system at the top level
             of modelInput), used instead of BuildConverseRequest
             wherever a caller needs the raw Anthropic Messages shape
             rather than Bedrock's Converse envelope.
Root Cause:  Bedrock batch inference jobs take modelInput in each
             model's native invoke format; they reject a Converse-
             shaped body even for a model that Converse otherwise
             supports directly.
Context:     Selected by internal/s3bridge's batch row rewriter for
             Anthropic models instead of BuildConverseRequest.
Suitability: L3 — content-block mapping mirrors converse.go's, with
             Anthropic's own field names substituted.
──────────────────────────────────────────────────────────────
*/
package bedrockcfg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
	"github.com/AlfredDev/alfred-bedrock-core/internal/transform"
)

// defaultBatchMaxTokens is used when a batch/fine-tune row's body omits
// max_tokens, which Anthropic's native invoke body requires.
const defaultBatchMaxTokens = 1024

// BuildAnthropicNativeRequest renders a canonical chat request into
// Anthropic's native Bedrock InvokeModel body, per spec.md §4.7's batch
// modelInput shape (`{messages:[…],anthropic_version:"bedrock-2023-05-31",…}`
// at the top level, not nested under additionalModelRequestFields).
func BuildAnthropicNativeRequest(req *schema.ChatRequest) (transform.Tree, error) {
	system, messages, err := buildAnthropicMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := defaultBatchMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	} else if req.MaxCompletion != nil {
		maxTokens = *req.MaxCompletion
	}

	target := transform.Tree{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":         maxTokens,
		"messages":           messages,
	}
	if system != "" {
		target["system"] = system
	}
	if req.Temperature != nil {
		target["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		target["top_p"] = *req.TopP
	}
	if req.TopK != nil {
		target["top_k"] = *req.TopK
	}
	if len(req.Stop) > 0 {
		target["stop_sequences"] = req.Stop
	}
	if len(req.Tools) > 0 {
		tools, err := buildAnthropicTools(req.Tools)
		if err != nil {
			return nil, err
		}
		target["tools"] = tools
	}
	return target, nil
}

func buildAnthropicMessages(msgs []schema.ChatMessage) (system string, out []interface{}, err error) {
	var systemParts []string
	var pending *anthropicMsg

	flush := func() {
		if pending != nil {
			out = append(out, pending.toMap())
			pending = nil
		}
	}

	for _, m := range msgs {
		switch m.Role {
		case schema.RoleSystem:
			if text := flattenText(m); text != "" {
				systemParts = append(systemParts, text)
			}
			continue
		case schema.RoleTool:
			content, convErr := anthropicToolResultBlock(m)
			if convErr != nil {
				return "", nil, convErr
			}
			if pending != nil && pending.role == "user" {
				pending.content = append(pending.content, content)
				continue
			}
			flush()
			pending = &anthropicMsg{role: "user", content: []interface{}{content}}
			continue
		}

		role := string(m.Role)
		var blocks []interface{}
		for _, tc := range m.ToolCalls {
			var input map[string]interface{}
			if tc.Function.Arguments != "" {
				if jerr := json.Unmarshal([]byte(tc.Function.Arguments), &input); jerr != nil {
					return "", nil, fmt.Errorf("bedrockcfg: tool call %s arguments not valid JSON: %w", tc.ID, jerr)
				}
			}
			blocks = append(blocks, map[string]interface{}{
				"type":  "tool_use",
				"id":    tc.ID,
				"name":  tc.Function.Name,
				"input": input,
			})
		}
		for _, block := range m.ContentBlocks() {
			mapped, convErr := mapAnthropicContentBlock(block)
			if convErr != nil {
				return "", nil, convErr
			}
			blocks = append(blocks, mapped)
		}

		if pending != nil && pending.role == role {
			pending.content = append(pending.content, blocks...)
			continue
		}
		flush()
		pending = &anthropicMsg{role: role, content: blocks}
	}
	flush()
	return strings.Join(systemParts, "\n"), out, nil
}

type anthropicMsg struct {
	role    string
	content []interface{}
}

func (m *anthropicMsg) toMap() map[string]interface{} {
	return map[string]interface{}{"role": m.role, "content": m.content}
}

func anthropicToolResultBlock(m schema.ChatMessage) (interface{}, error) {
	var content []interface{}
	for _, block := range m.ContentBlocks() {
		if block.Type == "text" && block.Text != "" {
			content = append(content, map[string]interface{}{"type": "text", "text": block.Text})
		}
	}
	if content == nil {
		content = []interface{}{}
	}
	return map[string]interface{}{
		"type":        "tool_result",
		"tool_use_id": m.ToolCallID,
		"content":     content,
	}, nil
}

func mapAnthropicContentBlock(block schema.ContentBlock) (interface{}, error) {
	switch block.Type {
	case "text":
		return map[string]interface{}{"type": "text", "text": block.Text}, nil
	case "thinking":
		return map[string]interface{}{"type": "thinking", "thinking": block.Thinking, "signature": block.Signature}, nil
	case "redacted_thinking":
		return map[string]interface{}{"type": "redacted_thinking", "data": block.Data}, nil
	case "image_url":
		if block.ImageURL == nil {
			return nil, fmt.Errorf("bedrockcfg: image_url block missing image_url")
		}
		mime, data, err := decodeDataURL(block.ImageURL.URL)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": mime,
				"data":       data,
			},
		}, nil
	default:
		return nil, fmt.Errorf("bedrockcfg: unsupported content block type %q", block.Type)
	}
}

// anthropicNativeResponse mirrors the subset of Anthropic's native
// Messages API response this transform reads.
type anthropicNativeResponse struct {
	Content    []map[string]interface{} `json:"content"`
	StopReason string                    `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// TransformAnthropicNativeResponse builds a canonical ChatResponse from a
// decoded native Anthropic InvokeModel response body, the shape a batch
// inference job's output file carries for Anthropic rows since the job
// was dispatched with BuildAnthropicNativeRequest rather than Converse.
func TransformAnthropicNativeResponse(body map[string]interface{}, model string, created int64, id string, strict bool) (*schema.ChatResponse, error) {
	var parsed anthropicNativeResponse
	if err := remarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("bedrockcfg: decode anthropic native response: %w", err)
	}

	var texts []string
	var blocks []schema.ContentBlock
	var toolCalls []schema.ToolCall

	for _, block := range parsed.Content {
		switch block["type"] {
		case "text":
			text, _ := block["text"].(string)
			texts = append(texts, text)
			blocks = append(blocks, schema.ContentBlock{Type: "text", Text: text})
		case "thinking":
			text, _ := block["thinking"].(string)
			sig, _ := block["signature"].(string)
			blocks = append(blocks, schema.ContentBlock{Type: "thinking", Thinking: text, Signature: sig})
		case "redacted_thinking":
			data, _ := block["data"].(string)
			blocks = append(blocks, schema.ContentBlock{Type: "redacted_thinking", Data: data})
		case "tool_use":
			args, err := marshalArguments(block["input"])
			if err != nil {
				return nil, err
			}
			id, _ := block["id"].(string)
			name, _ := block["name"].(string)
			toolCalls = append(toolCalls, schema.ToolCall{
				ID:   id,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			})
		}
	}

	msg := schema.ChoiceMessage{
		Role:    "assistant",
		Content: strings.Join(texts, "\n"),
	}
	if !strict {
		msg.ContentBlocks = blocks
	}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}

	total := parsed.Usage.InputTokens + parsed.Usage.OutputTokens
	return &schema.ChatResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []schema.Choice{{
			Index:        0,
			Message:      msg,
			FinishReason: parsed.StopReason,
		}},
		Usage: schema.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      total,
		},
	}, nil
}

func buildAnthropicTools(tools []schema.ToolSpec) ([]interface{}, error) {
	out := make([]interface{}, 0, len(tools))
	for _, tool := range tools {
		if err := validateToolParameters(tool.Function.Name, tool.Function.Parameters); err != nil {
			return nil, err
		}
		var schemaDoc interface{}
		if len(tool.Function.Parameters) > 0 {
			if err := json.Unmarshal(tool.Function.Parameters, &schemaDoc); err != nil {
				return nil, fmt.Errorf("tool %q: decode parameters: %w", tool.Function.Name, err)
			}
		}
		out = append(out, map[string]interface{}{
			"name":         tool.Function.Name,
			"description":  tool.Function.Description,
			"input_schema": schemaDoc,
		})
	}
	return out, nil
}
