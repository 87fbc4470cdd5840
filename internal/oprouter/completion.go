/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Legacy `/v1/completions` support: wraps the prompt as a
             single-turn chat request and reuses DispatchChatCompletion,
             then reshapes the canonical chat response into the legacy
             completion shape. Bedrock has no separate completions API;
             every model family this core targets is chat-shaped or
             prompt-templated underneath, so there is nothing left to
             special-case.
Root Cause:  spec.md §6 lists `POST /completions` alongside chat; it
             is a thin compatibility surface, not a distinct transform
             target.
Context:     Called from internal/httpapi's legacy completions handler.
Suitability: L3 — a reshape over an already-tested path, not a new
             one.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"context"

	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// DispatchCompletion issues req as a single-turn chat completion and
// reshapes the result into the legacy CompletionResponse envelope.
func (c *Client) DispatchCompletion(ctx context.Context, req *schema.CompletionRequest, t ProviderTarget) (*schema.CompletionResponse, error) {
	chatReq := &schema.ChatRequest{
		Model:       req.Model,
		Messages:    []schema.ChatMessage{{Role: schema.RoleUser, Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
	}
	chatResp, err := c.DispatchChatCompletion(ctx, chatReq, t)
	if err != nil {
		return nil, err
	}

	out := &schema.CompletionResponse{
		ID:      chatResp.ID,
		Object:  "text_completion",
		Created: chatResp.Created,
		Model:   chatResp.Model,
		Usage:   chatResp.Usage,
	}
	for _, choice := range chatResp.Choices {
		out.Choices = append(out.Choices, schema.CompletionChoice{
			Index:        choice.Index,
			Text:         choice.Message.Content,
			FinishReason: choice.FinishReason,
		})
	}
	return out, nil
}
