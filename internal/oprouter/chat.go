/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Ties together family detection, request building,
             signing, and response transform for one chat completion
             call — unary and streaming — per spec.md §4.4/§4.5/§4.6.
Root Cause:  internal/bedrockcfg and internal/stream only build and
             read Bedrock payloads; something has to own the HTTP
             round trip and choose Converse vs invoke per model.
Context:     Called from internal/httpapi's chat completions handler
             with a decoded schema.ChatRequest and a resolved
             ProviderTarget.
Suitability: L3 — orchestration of already-tested lower layers.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/AlfredDev/alfred-bedrock-core/internal/bedrockcfg"
	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
	"github.com/AlfredDev/alfred-bedrock-core/internal/stream"
)

// DispatchChatCompletion issues a unary (non-streaming) chat completion
// against Bedrock and returns the canonical response.
func (c *Client) DispatchChatCompletion(ctx context.Context, req *schema.ChatRequest, t ProviderTarget) (*schema.ChatResponse, error) {
	family := bedrockcfg.DetectFamily(t.BedrockModel)
	ep, err := BuildEndpoint(OpChatCompletion, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}

	var body []byte
	var inputTokenHeader, outputTokenHeader string
	if bedrockcfg.IsConverseEligible(t.BedrockModel) {
		tree, err := bedrockcfg.BuildConverseRequest(req, family)
		if err != nil {
			return nil, errmap.Transform(t.Provider, err)
		}
		body, err = json.Marshal(map[string]interface{}(tree))
		if err != nil {
			return nil, errmap.Transform(t.Provider, err)
		}
	} else {
		tree, err := bedrockcfg.BuildInvokeRequest(req, family)
		if err != nil {
			return nil, errmap.Transform(t.Provider, err)
		}
		body, err = json.Marshal(map[string]interface{}(tree))
		if err != nil {
			return nil, errmap.Transform(t.Provider, err)
		}
	}

	respBody, headers, err := c.doJSON(ctx, ep, t, body)
	if err != nil {
		return nil, err
	}

	id := "chatcmpl-" + uuid.New().String()
	created := nowUnix()

	if bedrockcfg.IsConverseEligible(t.BedrockModel) {
		out, err := bedrockcfg.TransformConverseResponse(respBody, t.BedrockModel, created, id, t.Strict)
		if err != nil {
			return nil, errmap.Transform(t.Provider, err)
		}
		return out, nil
	}

	inputTokenHeader = headers.Get("X-Amzn-Bedrock-Input-Token-Count")
	outputTokenHeader = headers.Get("X-Amzn-Bedrock-Output-Token-Count")
	out, err := bedrockcfg.TransformInvokeResponse(respBody, family, t.BedrockModel, created, id,
		bedrockcfg.HeaderTokenCount(inputTokenHeader), bedrockcfg.HeaderTokenCount(outputTokenHeader))
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	return out, nil
}

// DispatchChatCompletionStream issues a streaming chat completion and
// translates the upstream framing into canonical SSE frames written to
// w, per spec.md §4.6.
func (c *Client) DispatchChatCompletionStream(ctx context.Context, req *schema.ChatRequest, t ProviderTarget, w http.ResponseWriter) error {
	family := bedrockcfg.DetectFamily(t.BedrockModel)
	ep, err := BuildEndpoint(OpChatCompletion, t, true, "")
	if err != nil {
		return errmap.Validation("%v", err)
	}

	converse := bedrockcfg.IsConverseEligible(t.BedrockModel)
	var body []byte
	if converse {
		tree, err := bedrockcfg.BuildConverseRequest(req, family)
		if err != nil {
			return errmap.Transform(t.Provider, err)
		}
		body, err = json.Marshal(map[string]interface{}(tree))
		if err != nil {
			return errmap.Transform(t.Provider, err)
		}
	} else {
		tree, err := bedrockcfg.BuildInvokeRequest(req, family)
		if err != nil {
			return errmap.Transform(t.Provider, err)
		}
		body, err = json.Marshal(map[string]interface{}(tree))
		if err != nil {
			return errmap.Transform(t.Provider, err)
		}
	}

	creds, err := ResolvedCredentials(ctx, t, c.STS)
	if err != nil {
		return err
	}
	signed, err := signer.Sign(creds, signer.Request{
		Method:  ep.Method,
		URL:     ep.URL,
		Region:  t.Region,
		Service: ep.Service,
		Body:    body,
	})
	if err != nil {
		return errmap.Credential(t.Provider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, ep.Method, ep.URL.String(), bytes.NewReader(body))
	if err != nil {
		return errmap.IO(err)
	}
	httpReq.Header = signed
	httpReq.Header.Set("Host", ep.URL.Host)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.ContentLength = int64(len(body))

	resp, err := c.Pool.Client(ep.Service, 0).Do(httpReq)
	if err != nil {
		return errmap.IO(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return errmap.Upstream(t.Provider, resp.StatusCode, respBody)
	}

	sw, err := stream.NewWriter(w)
	if err != nil {
		return errmap.IO(err)
	}

	st := &stream.State{ID: "chatcmpl-" + uuid.New().String(), Model: t.BedrockModel, Created: nowUnix(), Strict: t.Strict}
	if converse {
		return stream.TranslateConverseStream(resp.Body, sw, st)
	}
	return stream.TranslateInvokeStream(resp.Body, sw, st, family)
}

