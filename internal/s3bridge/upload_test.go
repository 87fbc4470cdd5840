package s3bridge

import (
	"encoding/json"
	"testing"
)

func TestRewriteBatchLine_ProducesRecordIDAndNativeAnthropicModelInput(t *testing.T) {
	line := []byte(`{"custom_id":"r1","body":{"model":"anthropic.claude-3-haiku-20240307-v1:0","messages":[{"role":"user","content":"Hi"}]}}`)
	out, err := rewriteBatchLine(line, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row map[string]interface{}
	if err := json.Unmarshal(out, &row); err != nil {
		t.Fatalf("output isn't valid JSON: %v", err)
	}
	if row["recordId"] != "r1" {
		t.Fatalf("expected recordId r1, got %v", row["recordId"])
	}
	input, _ := row["modelInput"].(map[string]interface{})
	if input == nil {
		t.Fatal("expected a modelInput field")
	}
	if input["anthropic_version"] != "bedrock-2023-05-31" {
		t.Fatalf("expected anthropic_version at modelInput top level, got %v", input)
	}
	if _, ok := input["messages"]; !ok {
		t.Fatalf("expected native messages field, got %v", input)
	}
	if _, ok := input["additionalModelRequestFields"]; ok {
		t.Fatalf("batch modelInput must be native invoke shape, not Converse, got %v", input)
	}
}

func TestRewriteBatchLine_FallsBackToUploadModel(t *testing.T) {
	line := []byte(`{"custom_id":"req-2","body":{"messages":[{"role":"user","content":"hi"}]}}`)
	out, err := rewriteBatchLine(line, "anthropic.claude-3-sonnet-20240229-v1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row map[string]interface{}
	_ = json.Unmarshal(out, &row)
	input, _ := row["modelInput"].(map[string]interface{})
	if _, ok := input["messages"]; !ok {
		t.Fatalf("expected native messages field in modelInput, got %v", input)
	}
}

func TestRewriteBatchLine_MissingCustomIDIsError(t *testing.T) {
	line := []byte(`{"body":{"model":"anthropic.claude-3-sonnet-20240229-v1:0","messages":[{"role":"user","content":"hi"}]}}`)
	if _, err := rewriteBatchLine(line, ""); err == nil {
		t.Fatal("expected error for missing custom_id")
	}
}

func TestRewriteFineTuneChatLine_SplitsLeadingSystemMessage(t *testing.T) {
	line := []byte(`{"messages":[{"role":"system","content":"be terse"},{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`)
	out, err := rewriteFineTuneChatLine(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row map[string]interface{}
	_ = json.Unmarshal(out, &row)
	if row["system"] != "be terse" {
		t.Fatalf("expected system pulled out, got %v", row["system"])
	}
	msgs, _ := row["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("expected 2 remaining messages, got %d", len(msgs))
	}
}

func TestRewriteFineTuneChatLine_RequiresTrailingAssistant(t *testing.T) {
	line := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
	if _, err := rewriteFineTuneChatLine(line); err == nil {
		t.Fatal("expected error when row doesn't end with an assistant message")
	}
}

func TestRewriteFineTuneTextLine_AcceptsNativeShape(t *testing.T) {
	line := []byte(`{"prompt":"2+2=","completion":"4"}`)
	out, err := rewriteFineTuneTextLine(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row fineTuneTextRow
	_ = json.Unmarshal(out, &row)
	if row.Prompt == nil || *row.Prompt != "2+2=" {
		t.Fatalf("expected prompt preserved, got %v", row.Prompt)
	}
}

func TestRewriteFineTuneTextLine_DownconvertsTwoTurnChatRow(t *testing.T) {
	line := []byte(`{"messages":[{"role":"user","content":"2+2="},{"role":"assistant","content":"4"}]}`)
	out, err := rewriteFineTuneTextLine(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row fineTuneTextRow
	_ = json.Unmarshal(out, &row)
	if row.Prompt == nil || *row.Prompt != "2+2=" || row.Completion == nil || *row.Completion != "4" {
		t.Fatalf("expected downconverted prompt/completion, got %+v", row)
	}
}

func TestRewriteFineTuneTextLine_RejectsMultiTurnChatRow(t *testing.T) {
	line := []byte(`{"messages":[{"role":"user","content":"a"},{"role":"assistant","content":"b"},{"role":"user","content":"c"}]}`)
	if _, err := rewriteFineTuneTextLine(line); err == nil {
		t.Fatal("expected error for a row that isn't {prompt,completion} or two-turn chat")
	}
}
