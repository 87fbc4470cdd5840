/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Translates invoke-with-response-stream chunks (one
             family-specific JSON object per event, trailer field
             "amazon-bedrock-invocationMetrics") into the same
             canonical SSE contract the converse translator produces.
Root Cause:  Legacy invoke-only families stream through a different
             endpoint and chunk shape than Converse but still need to
             reach the client as uniform OpenAI-style SSE.
Context:     Selected alongside bedrockcfg.BuildInvokeRequest whenever
             the target model is not Converse-eligible.
Suitability: L3 — one small per-family text extractor, shared closing
             logic with converse.go's chunk builder.
──────────────────────────────────────────────────────────────
*/
package stream

import (
	"io"

	"github.com/AlfredDev/alfred-bedrock-core/internal/bedrockcfg"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// TranslateInvokeStream reads event-stream frames from r for the given
// invoke family and writes canonical SSE chunks to w.
func TranslateInvokeStream(r io.Reader, w *Writer, st *State, family bedrockcfg.Family) error {
	err := decodeEventStreamChunks(r, func(frame map[string]interface{}) error {
		return handleInvokeFrame(frame, w, st, family)
	})
	if err != nil {
		return emitStreamError(w, st, err)
	}
	return w.WriteDone()
}

func handleInvokeFrame(frame map[string]interface{}, w *Writer, st *State, family bedrockcfg.Family) error {
	metrics, isTrailer := frame["amazon-bedrock-invocationMetrics"].(map[string]interface{})

	text, stopReason := invokeChunkText(frame, family)
	if text != "" {
		if err := w.WriteFrame(st.chunk(schema.StreamDelta{Content: text}, nil)); err != nil {
			return err
		}
	}
	if stopReason != "" {
		st.stopReason = stopReason
	}

	if isTrailer {
		finish := st.stopReason
		u := &schema.Usage{
			PromptTokens:     int(asFloat(metrics["inputTokenCount"])),
			CompletionTokens: int(asFloat(metrics["outputTokenCount"])),
		}
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
		chunk := st.chunk(schema.StreamDelta{}, &finish)
		chunk.Usage = u
		return w.WriteFrame(chunk)
	}
	return nil
}

// invokeChunkText extracts the incremental text and any stop reason from
// one family-specific invoke-stream chunk.
func invokeChunkText(frame map[string]interface{}, family bedrockcfg.Family) (text string, stopReason string) {
	switch family {
	case bedrockcfg.FamilyCohereInvoke:
		text, _ = frame["text"].(string)
		stopReason, _ = frame["finish_reason"].(string)
	case bedrockcfg.FamilyLlama2Invoke, bedrockcfg.FamilyLlama3Invoke:
		text, _ = frame["generation"].(string)
		stopReason, _ = frame["stop_reason"].(string)
	case bedrockcfg.FamilyMistralInvoke:
		outputs, _ := frame["outputs"].([]interface{})
		if len(outputs) > 0 {
			if first, ok := outputs[0].(map[string]interface{}); ok {
				text, _ = first["text"].(string)
				stopReason, _ = first["stop_reason"].(string)
			}
		}
	case bedrockcfg.FamilyTitanInvoke:
		text, _ = frame["outputText"].(string)
		stopReason, _ = frame["completionReason"].(string)
	}
	return text, stopReason
}
