package bedrockcfg

import (
	"testing"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

func TestBuildConverseRequest_SystemStrippedAndCoalesced(t *testing.T) {
	req := &schema.ChatRequest{
		Messages: []schema.ChatMessage{
			{Role: schema.RoleSystem, Content: "be nice"},
			{Role: schema.RoleUser, Content: "hello"},
			{Role: schema.RoleUser, Content: "world"},
		},
	}
	tree, err := BuildConverseRequest(req, FamilyAnthropicConverse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	system := tree["system"].([]interface{})
	if len(system) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(system))
	}
	messages := tree["messages"].([]interface{})
	if len(messages) != 1 {
		t.Fatalf("expected coalesced single user message, got %d", len(messages))
	}
	msg := messages[0].(map[string]interface{})
	content := msg["content"].([]interface{})
	if len(content) != 2 {
		t.Fatalf("expected 2 coalesced content blocks, got %d", len(content))
	}
}

func TestBuildConverseRequest_ToolCallArgumentsParsed(t *testing.T) {
	req := &schema.ChatRequest{
		Messages: []schema.ChatMessage{
			{
				Role: schema.RoleAssistant,
				ToolCalls: []schema.ToolCall{
					{ID: "call_1", Type: "function", Function: schema.FunctionCall{Name: "lookup", Arguments: `{"q":"x"}`}},
				},
			},
		},
	}
	tree, err := BuildConverseRequest(req, FamilyAnthropicConverse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	messages := tree["messages"].([]interface{})
	msg := messages[0].(map[string]interface{})
	content := msg["content"].([]interface{})
	block := content[0].(map[string]interface{})
	toolUse := block["toolUse"].(map[string]interface{})
	input := toolUse["input"].(map[string]interface{})
	if input["q"] != "x" {
		t.Fatalf("expected parsed tool arguments, got %v", input)
	}
}

func TestBuildConverseRequest_ToolResultNeverEmptyString(t *testing.T) {
	req := &schema.ChatRequest{
		Messages: []schema.ChatMessage{
			{Role: schema.RoleTool, ToolCallID: "call_1", Content: ""},
		},
	}
	tree, err := BuildConverseRequest(req, FamilyAnthropicConverse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	messages := tree["messages"].([]interface{})
	msg := messages[0].(map[string]interface{})
	content := msg["content"].([]interface{})
	block := content[0].(map[string]interface{})
	toolResult := block["toolResult"].(map[string]interface{})
	resultContent := toolResult["content"].([]interface{})
	if resultContent == nil || len(resultContent) != 0 {
		t.Fatalf("expected empty array content, got %v", resultContent)
	}
}

func TestDetectFamily_InvokeOnlyModels(t *testing.T) {
	if IsConverseEligible("ai21.j2-ultra-v1") {
		t.Fatal("ai21.j2-ultra-v1 should not be converse-eligible")
	}
	if DetectFamily("ai21.j2-ultra-v1") != FamilyAI21Invoke {
		t.Fatalf("expected ai21 invoke family")
	}
	if !IsConverseEligible("anthropic.claude-3-5-sonnet-20241022-v2:0") {
		t.Fatal("claude sonnet should be converse-eligible")
	}
}
