package bedrockcfg

import (
	"strings"
	"testing"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

func TestBuildLlama3Prompt_ControlTokens(t *testing.T) {
	msgs := []schema.ChatMessage{
		{Role: schema.RoleSystem, Content: "be terse"},
		{Role: schema.RoleUser, Content: "hi"},
	}
	prompt := buildLlama3Prompt(msgs)
	if !strings.Contains(prompt, "<|start_header_id|>system<|end_header_id|>") {
		t.Fatalf("missing system header in: %s", prompt)
	}
	if !strings.HasSuffix(prompt, "<|start_header_id|>assistant<|end_header_id|>\n\n") {
		t.Fatalf("expected trailing assistant header, got: %s", prompt)
	}
}

func TestBuildLlama2Prompt_SystemFoldedIntoFirstTurn(t *testing.T) {
	msgs := []schema.ChatMessage{
		{Role: schema.RoleSystem, Content: "be terse"},
		{Role: schema.RoleUser, Content: "hi"},
	}
	prompt := buildLlama2Prompt(msgs)
	if !strings.Contains(prompt, "<<SYS>>") || !strings.Contains(prompt, "be terse") {
		t.Fatalf("expected system folded into first turn, got: %s", prompt)
	}
	if !strings.HasPrefix(prompt, "<s>[INST]") {
		t.Fatalf("expected INST wrapper, got: %s", prompt)
	}
}

func TestExtractInvokeText_TitanResponse(t *testing.T) {
	body := map[string]interface{}{
		"results": []interface{}{
			map[string]interface{}{"outputText": "hello", "completionReason": "FINISH"},
		},
	}
	text, reason, err := extractInvokeText(body, FamilyTitanInvoke)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Fatalf("expected hello, got %q", text)
	}
	if reason != "FINISH" {
		t.Fatalf("expected passthrough finish reason, got %q", reason)
	}
}

func TestHeaderTokenCount_DefaultsToZero(t *testing.T) {
	if HeaderTokenCount("") != 0 {
		t.Fatal("expected 0 for empty header")
	}
	if HeaderTokenCount("not-a-number") != 0 {
		t.Fatal("expected 0 for malformed header")
	}
	if HeaderTokenCount("42") != 42 {
		t.Fatal("expected 42")
	}
}
