/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Bedrock Converse unary response -> canonical ChatResponse,
             per spec.md §4.5. Joins text blocks with newlines, carries
             structured content_blocks and tool_calls unless strict
             OpenAI compliance is requested, and maps finish_reason and
             usage (including cache token fields when nonzero).
Root Cause:  Every non-streaming chat_complete call against a
             Converse-eligible model passes its raw response through
             this one transform before it reaches the client.
Context:     Mirrors the stream translator's per-frame logic in
             internal/stream, but operates on the whole response body
             at once.
Suitability: L3 — mechanical field mapping, low risk once the
             content-block kinds are covered.
──────────────────────────────────────────────────────────────
*/
package bedrockcfg

import (
	"fmt"
	"strings"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// converseOutputMessage mirrors the subset of Bedrock's ConverseResponse
// this transform reads.
type converseOutputMessage struct {
	Output struct {
		Message struct {
			Role    string                   `json:"role"`
			Content []map[string]interface{} `json:"content"`
		} `json:"message"`
	} `json:"output"`
	StopReason string `json:"stopReason"`
	Usage      struct {
		InputTokens               int `json:"inputTokens"`
		OutputTokens              int `json:"outputTokens"`
		TotalTokens               int `json:"totalTokens"`
		CacheReadInputTokens      int `json:"cacheReadInputTokens"`
		CacheWriteInputTokens     int `json:"cacheWriteInputTokens"`
	} `json:"usage"`
}

// TransformConverseResponse builds a canonical ChatResponse from a
// decoded Converse response body.
func TransformConverseResponse(body map[string]interface{}, model string, created int64, id string, strict bool) (*schema.ChatResponse, error) {
	var parsed converseOutputMessage
	if err := remarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("bedrockcfg: decode converse response: %w", err)
	}

	var texts []string
	var blocks []schema.ContentBlock
	var toolCalls []schema.ToolCall

	for _, block := range parsed.Output.Message.Content {
		if text, ok := block["text"].(string); ok {
			texts = append(texts, text)
			blocks = append(blocks, schema.ContentBlock{Type: "text", Text: text})
			continue
		}
		if reasoning, ok := block["reasoningContent"].(map[string]interface{}); ok {
			if rt, ok := reasoning["reasoningText"].(map[string]interface{}); ok {
				text, _ := rt["text"].(string)
				sig, _ := rt["signature"].(string)
				blocks = append(blocks, schema.ContentBlock{Type: "thinking", Thinking: text, Signature: sig})
				continue
			}
			if redacted, ok := reasoning["redactedContent"].(string); ok {
				blocks = append(blocks, schema.ContentBlock{Type: "redacted_thinking", Data: redacted})
				continue
			}
		}
		if toolUse, ok := block["toolUse"].(map[string]interface{}); ok {
			args, err := marshalArguments(toolUse["input"])
			if err != nil {
				return nil, err
			}
			id, _ := toolUse["toolUseId"].(string)
			name, _ := toolUse["name"].(string)
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

	usage := schema.Usage{
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
	}
	if parsed.Usage.CacheReadInputTokens > 0 {
		v := parsed.Usage.CacheReadInputTokens
		usage.CacheReadInputTokens = &v
	}
	if parsed.Usage.CacheWriteInputTokens > 0 {
		v := parsed.Usage.CacheWriteInputTokens
		usage.CacheCreationInputTokens = &v
	}

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
		Usage: usage,
	}, nil
}
