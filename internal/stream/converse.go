/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Translates a Bedrock converse-stream event sequence into
             canonical SSE chunks, per spec.md §4.6's frame-by-frame
             algorithm: tool-call start/delta, text/reasoning deltas,
             and a closing usage+finish_reason frame before [DONE].
Root Cause:  converse-stream is the highest-traffic streaming path
             (same models as the Converse unary transform).
Context:     Driven entirely by reads from the upstream response body;
             owns no background goroutines, so a downstream disconnect
             just stops the read loop and releases the body (see
             TranslateConverseStream's io.Reader parameter).
Suitability: L3 — ordering invariants (tool-call index, usage-before-
             DONE) make this worth hand-writing and testing directly.
──────────────────────────────────────────────────────────────
*/
package stream

import (
	"io"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// TranslateConverseStream reads event-stream frames from r and writes
// canonical SSE chunks to w until r is exhausted, an error frame is
// seen, or w returns a write error (downstream disconnect).
func TranslateConverseStream(r io.Reader, w *Writer, st *State) error {
	err := decodeEventStreamChunks(r, func(frame map[string]interface{}) error {
		return handleConverseFrame(frame, w, st)
	})
	if err != nil {
		return emitStreamError(w, st, err)
	}
	return w.WriteDone()
}

func handleConverseFrame(frame map[string]interface{}, w *Writer, st *State) error {
	if stopReason, ok := frame["stopReason"].(string); ok && stopReason != "" {
		st.stopReason = stopReason
	}

	if start, ok := frame["start"].(map[string]interface{}); ok {
		if toolUse, ok := start["toolUse"].(map[string]interface{}); ok {
			idx := st.nextToolCallIndex()
			id, _ := toolUse["toolUseId"].(string)
			name, _ := toolUse["name"].(string)
			return w.WriteFrame(st.chunk(schema.StreamDelta{
				ToolCalls: []schema.StreamToolCall{{
					Index:    idx,
					ID:       id,
					Type:     "function",
					Function: &schema.StreamFunctionDelta{Name: name, Arguments: ""},
				}},
			}, nil))
		}
	}

	if delta, ok := frame["delta"].(map[string]interface{}); ok {
		if toolUse, ok := delta["toolUse"].(map[string]interface{}); ok {
			input, _ := toolUse["input"].(string)
			return w.WriteFrame(st.chunk(schema.StreamDelta{
				ToolCalls: []schema.StreamToolCall{{
					Index:    st.currentToolCallIndex,
					Function: &schema.StreamFunctionDelta{Arguments: input},
				}},
			}, nil))
		}
		if text, ok := delta["text"].(string); ok && text != "" {
			return emitTextDelta(w, st, frame, "text", text)
		}
		if reasoning, ok := delta["reasoningContent"].(map[string]interface{}); ok {
			return emitReasoningDelta(w, st, frame, reasoning)
		}
	}

	if usage, ok := frame["usage"].(map[string]interface{}); ok {
		return emitClosingFrame(w, st, usage)
	}
	return nil
}

func emitTextDelta(w *Writer, st *State, frame map[string]interface{}, kind, text string) error {
	sd := schema.StreamDelta{Content: text}
	if !st.Strict {
		idx, _ := frame["contentBlockIndex"].(float64)
		sd.ContentBlocks = []schema.StreamBlockDelta{{
			Index: int(idx),
			Delta: schema.StreamBlockValue{Text: text},
		}}
	}
	return w.WriteFrame(st.chunk(sd, nil))
}

func emitReasoningDelta(w *Writer, st *State, frame map[string]interface{}, reasoning map[string]interface{}) error {
	idx, _ := frame["contentBlockIndex"].(float64)
	block := schema.StreamBlockValue{}
	if text, ok := reasoning["text"].(string); ok {
		block.Thinking = text
	}
	if sig, ok := reasoning["signature"].(string); ok {
		block.Signature = sig
	}
	if data, ok := reasoning["redactedContent"].(string); ok {
		block.Data = data
	}
	sd := schema.StreamDelta{}
	if !st.Strict {
		sd.ContentBlocks = []schema.StreamBlockDelta{{Index: int(idx), Delta: block}}
	}
	return w.WriteFrame(st.chunk(sd, nil))
}

func emitClosingFrame(w *Writer, st *State, usage map[string]interface{}) error {
	prompt := int(asFloat(usage["inputTokens"]))
	completion := int(asFloat(usage["outputTokens"]))
	total := int(asFloat(usage["totalTokens"]))
	u := &schema.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: total}
	if v := int(asFloat(usage["cacheReadInputTokens"])); v > 0 {
		u.CacheReadInputTokens = &v
	}
	if v := int(asFloat(usage["cacheWriteInputTokens"])); v > 0 {
		u.CacheCreationInputTokens = &v
	}

	finish := st.stopReason
	chunk := st.chunk(schema.StreamDelta{}, &finish)
	chunk.Usage = u
	return w.WriteFrame(chunk)
}

func emitStreamError(w *Writer, st *State, _ error) error {
	finish := "error"
	if werr := w.WriteFrame(st.chunk(schema.StreamDelta{}, &finish)); werr != nil {
		return werr
	}
	return w.WriteDone()
}

func (st *State) chunk(delta schema.StreamDelta, finishReason *string) schema.StreamChunk {
	return schema.StreamChunk{
		ID:      st.ID,
		Object:  "chat.completion.chunk",
		Created: st.Created,
		Model:   st.Model,
		Choices: []schema.StreamChunkChoice{{Index: 0, Delta: delta, FinishReason: finishReason}},
	}
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
