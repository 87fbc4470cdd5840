package s3bridge

import (
	"encoding/json"
	"testing"

	"github.com/AlfredDev/alfred-bedrock-core/internal/bedrockcfg"
)

func TestTransformBatchOutputLine_NativeAnthropicSuccessRow(t *testing.T) {
	line := []byte(`{"recordId":"req-1","modelOutput":{"content":[{"type":"text","text":"hi"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}}`)
	out, ok := transformBatchOutputLine(line, bedrockcfg.FamilyAnthropicConverse)
	if !ok {
		t.Fatal("expected line to be recognised")
	}
	var row map[string]interface{}
	if err := json.Unmarshal(out, &row); err != nil {
		t.Fatalf("output isn't valid JSON: %v", err)
	}
	if row["custom_id"] != "req-1" {
		t.Fatalf("expected custom_id req-1, got %v", row["custom_id"])
	}
	resp, _ := row["response"].(map[string]interface{})
	if resp == nil {
		t.Fatalf("expected a response field, got %v", row)
	}
}

func TestTransformBatchOutputLine_RowWithNativeError(t *testing.T) {
	line := []byte(`{"recordId":"req-2","error":{"errorCode":"ModelError","errorMessage":"boom"}}`)
	out, ok := transformBatchOutputLine(line, bedrockcfg.FamilyAnthropicConverse)
	if !ok {
		t.Fatal("expected line to be recognised")
	}
	var row map[string]interface{}
	_ = json.Unmarshal(out, &row)
	if row["custom_id"] != "req-2" {
		t.Fatalf("expected custom_id req-2, got %v", row["custom_id"])
	}
	if _, ok := row["error"]; !ok {
		t.Fatalf("expected an error field, got %v", row)
	}
}

func TestTransformBatchOutputLine_UnrecognisedLinePassesThrough(t *testing.T) {
	line := []byte(`not json at all`)
	_, ok := transformBatchOutputLine(line, bedrockcfg.FamilyAnthropicConverse)
	if ok {
		t.Fatal("expected unrecognised line to report ok=false so the caller passes it through unchanged")
	}
}
