/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Prompt templating and response parsing for the legacy
             invoke model families (Cohere command-text, AI21 J2,
             Titan text, Llama 2/3, Mistral 7B) that predate Converse.
             Each family concatenates messages into a single prompt
             string with its own control tokens.
Root Cause:  spec.md §4.4's non-Converse branch; these families never
             gained a Converse adapter on Bedrock's side.
Context:     Selected by the operation router when
             bedrockcfg.IsConverseEligible returns false. meta.llama3
             models are Converse-eligible, so live chat sends them
             through Converse; the Llama 3 invoke shape is reached
             through batch uploads (s3bridge). Response
             token usage for these families comes from response
             headers, not the body — see TransformInvokeResponse.
Suitability: L3 — string templating per family, mechanical but easy
             to get subtly wrong, so each family gets its own function.
──────────────────────────────────────────────────────────────
*/
package bedrockcfg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
	"github.com/AlfredDev/alfred-bedrock-core/internal/transform"
)

// BuildInvokeRequest renders a canonical chat request into the
// family-specific invoke body for a non-Converse model.
func BuildInvokeRequest(req *schema.ChatRequest, family Family) (transform.Tree, error) {
	prompt := buildPrompt(req.Messages, family)

	target := transform.Tree{}
	switch family {
	case FamilyCohereInvoke:
		target["prompt"] = prompt
		if req.MaxTokens != nil {
			target["max_tokens"] = *req.MaxTokens
		}
		if req.Temperature != nil {
			target["temperature"] = *req.Temperature
		}
		if req.PresencePenalty != nil {
			target["presence_penalty"] = *req.PresencePenalty
		}
		if req.FrequencyPenalty != nil {
			target["frequency_penalty"] = *req.FrequencyPenalty
		}
	case FamilyAI21Invoke:
		target["prompt"] = prompt
		if req.MaxTokens != nil {
			target["maxTokens"] = *req.MaxTokens
		}
		if req.Temperature != nil {
			target["temperature"] = *req.Temperature
		}
	case FamilyTitanInvoke:
		cfg := map[string]interface{}{}
		if req.MaxTokens != nil {
			cfg["maxTokenCount"] = *req.MaxTokens
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
		target["inputText"] = prompt
		target["textGenerationConfig"] = cfg
	case FamilyLlama2Invoke, FamilyLlama3Invoke, FamilyMistralInvoke:
		target["prompt"] = prompt
		if req.MaxTokens != nil {
			target["max_gen_len"] = *req.MaxTokens
		}
		if req.Temperature != nil {
			target["temperature"] = *req.Temperature
		}
		if req.TopP != nil {
			target["top_p"] = *req.TopP
		}
	default:
		return nil, fmt.Errorf("bedrockcfg: %s is not an invoke-family model", family)
	}
	return target, nil
}

func buildPrompt(msgs []schema.ChatMessage, family Family) string {
	switch family {
	case FamilyLlama3Invoke:
		return buildLlama3Prompt(msgs)
	case FamilyLlama2Invoke:
		return buildLlama2Prompt(msgs)
	case FamilyMistralInvoke:
		return buildMistralPrompt(msgs)
	default:
		return buildPlainPrompt(msgs)
	}
}

func buildLlama3Prompt(msgs []schema.ChatMessage) string {
	var b strings.Builder
	b.WriteString("<|begin_of_text|>")
	for _, m := range msgs {
		b.WriteString("<|start_header_id|>")
		b.WriteString(m.Role)
		b.WriteString("<|end_header_id|>\n\n")
		b.WriteString(flattenText(m))
		b.WriteString("<|eot_id|>")
	}
	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}

func buildLlama2Prompt(msgs []schema.ChatMessage) string {
	var system string
	var turns []schema.ChatMessage
	for _, m := range msgs {
		if m.Role == schema.RoleSystem {
			system = flattenText(m)
			continue
		}
		turns = append(turns, m)
	}

	var b strings.Builder
	for i, m := range turns {
		if m.Role != schema.RoleUser {
			continue
		}
		text := flattenText(m)
		if i == 0 && system != "" {
			text = fmt.Sprintf("<<SYS>>\n%s\n<</SYS>>\n\n%s", system, text)
		}
		b.WriteString("<s>[INST] ")
		b.WriteString(text)
		b.WriteString(" [/INST]")
		if i+1 < len(turns) && turns[i+1].Role == schema.RoleAssistant {
			b.WriteString(" ")
			b.WriteString(flattenText(turns[i+1]))
			b.WriteString(" </s>")
		}
	}
	return b.String()
}

func buildMistralPrompt(msgs []schema.ChatMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case schema.RoleSystem, schema.RoleUser:
			b.WriteString("<s>[INST] ")
			b.WriteString(flattenText(m))
			b.WriteString(" [/INST]")
		case schema.RoleAssistant:
			b.WriteString(flattenText(m))
			b.WriteString("</s>")
		}
	}
	return b.String()
}

func buildPlainPrompt(msgs []schema.ChatMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(flattenText(m))
		b.WriteString("\n")
	}
	return b.String()
}

func flattenText(m schema.ChatMessage) string {
	var parts []string
	for _, block := range m.ContentBlocks() {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// TransformInvokeResponse builds a canonical ChatResponse from a decoded
// invoke-family response body, reading usage from the response headers
// per spec.md §4.5 (both default to 0 when absent) and mapping
// stop_reason 1:1 to finish_reason.
func TransformInvokeResponse(body map[string]interface{}, family Family, model string, created int64, id string, inputTokens, outputTokens int) (*schema.ChatResponse, error) {
	text, stopReason, err := extractInvokeText(body, family)
	if err != nil {
		return nil, err
	}
	total := inputTokens + outputTokens
	return &schema.ChatResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []schema.Choice{{
			Index:        0,
			Message:      schema.ChoiceMessage{Role: "assistant", Content: text},
			FinishReason: stopReason,
		}},
		Usage: schema.Usage{
			PromptTokens:     inputTokens,
			CompletionTokens: outputTokens,
			TotalTokens:      total,
		},
	}, nil
}

func extractInvokeText(body map[string]interface{}, family Family) (text string, finishReason string, err error) {
	switch family {
	case FamilyCohereInvoke:
		gens, _ := body["generations"].([]interface{})
		if len(gens) == 0 {
			return "", "", fmt.Errorf("bedrockcfg: cohere invoke response has no generations")
		}
		first, _ := gens[0].(map[string]interface{})
		text, _ = first["text"].(string)
		finishReason, _ = first["finish_reason"].(string)
	case FamilyAI21Invoke:
		completions, _ := body["completions"].([]interface{})
		if len(completions) == 0 {
			return "", "", fmt.Errorf("bedrockcfg: ai21 invoke response has no completions")
		}
		first, _ := completions[0].(map[string]interface{})
		data, _ := first["data"].(map[string]interface{})
		text, _ = data["text"].(string)
		reason, _ := first["finishReason"].(map[string]interface{})
		finishReason, _ = reason["reason"].(string)
	case FamilyTitanInvoke:
		results, _ := body["results"].([]interface{})
		if len(results) == 0 {
			return "", "", fmt.Errorf("bedrockcfg: titan invoke response has no results")
		}
		first, _ := results[0].(map[string]interface{})
		text, _ = first["outputText"].(string)
		finishReason, _ = first["completionReason"].(string)
	case FamilyLlama2Invoke, FamilyLlama3Invoke:
		text, _ = body["generation"].(string)
		finishReason, _ = body["stop_reason"].(string)
	case FamilyMistralInvoke:
		outputs, _ := body["outputs"].([]interface{})
		if len(outputs) == 0 {
			return "", "", fmt.Errorf("bedrockcfg: mistral invoke response has no outputs")
		}
		first, _ := outputs[0].(map[string]interface{})
		text, _ = first["text"].(string)
		finishReason, _ = first["stop_reason"].(string)
	default:
		return "", "", fmt.Errorf("bedrockcfg: %s is not an invoke-family model", family)
	}
	return text, finishReason, nil
}

// HeaderTokenCount parses an X-Amzn-Bedrock-*-Token-Count header value,
// defaulting to 0 on absence or malformed input per spec.md §4.5.
func HeaderTokenCount(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
