package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestState_ToolCallIndexMonotonic(t *testing.T) {
	st := &State{}
	first := st.nextToolCallIndex()
	second := st.nextToolCallIndex()
	third := st.nextToolCallIndex()
	if first != 0 || second != 1 || third != 2 {
		t.Fatalf("expected 0,1,2 got %d,%d,%d", first, second, third)
	}
}

func TestHandleConverseFrame_TextDeltaThenUsageBeforeDone(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := &State{ID: "chatcmpl-1", Model: "anthropic.claude-3-haiku-20240307-v1:0"}

	if err := handleConverseFrame(map[string]interface{}{
		"contentBlockIndex": float64(0),
		"delta":             map[string]interface{}{"text": "hi"},
	}, w, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := handleConverseFrame(map[string]interface{}{"stopReason": "end_turn"}, w, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := handleConverseFrame(map[string]interface{}{
		"usage": map[string]interface{}{"inputTokens": float64(3), "outputTokens": float64(2), "totalTokens": float64(5)},
	}, w, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteDone(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := rec.Body.String()
	usageIdx := strings.Index(body, `"usage"`)
	doneIdx := strings.Index(body, "[DONE]")
	if usageIdx < 0 || doneIdx < 0 || usageIdx > doneIdx {
		t.Fatalf("expected usage frame before [DONE], body: %s", body)
	}
	if !strings.Contains(body, `"end_turn"`) {
		t.Fatalf("expected raw provider finish_reason end_turn, body: %s", body)
	}
}

func TestHandleConverseFrame_ToolCallStartEmitsIndexZero(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := &State{ID: "chatcmpl-1"}

	err = handleConverseFrame(map[string]interface{}{
		"start": map[string]interface{}{"toolUse": map[string]interface{}{"toolUseId": "call_1", "name": "lookup"}},
	}, w, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"index":0`) {
		t.Fatalf("expected index 0 in tool call delta, body: %s", rec.Body.String())
	}
}

func TestNewWriter_RejectsNonFlusher(t *testing.T) {
	_, err := NewWriter(&nonFlushingWriter{})
	if err != ErrStreamingUnsupported {
		t.Fatalf("expected ErrStreamingUnsupported, got %v", err)
	}
}

type nonFlushingWriter struct{}

func (nonFlushingWriter) Header() http.Header         { return http.Header{} }
func (nonFlushingWriter) Write(b []byte) (int, error) { return len(b), nil }
func (nonFlushingWriter) WriteHeader(int)             {}
