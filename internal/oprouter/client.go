/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Signs and issues the Bedrock control-plane and runtime
             HTTP calls the dispatch functions in this package need,
             sharing one signer.TransportPool and signer.AssumeRoleCache
             across requests the way the teacher's provider/pool.go
             shared one *http.Transport per provider instead of
             letting each call build its own.
Root Cause:  Every dispatch function (chat, embeddings, images,
             batch/fine-tune job CRUD) needs the identical
             sign-then-send-then-map-errors sequence; duplicating it
             per operation would drift.
Context:     Constructed once in main.go and threaded into
             internal/httpapi's handlers.
Suitability: L3 — small, shared request plumbing.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
)

// nowUnix returns the current Unix timestamp used to stamp canonical
// responses' `created` field.
func nowUnix() int64 {
	return time.Now().UTC().Unix()
}

// Client issues signed Bedrock control-plane and runtime calls on behalf
// of a resolved ProviderTarget.
type Client struct {
	Pool  *signer.TransportPool
	STS   *signer.AssumeRoleCache
}

// NewClient builds a Client sharing pool and sts across all requests.
func NewClient(pool *signer.TransportPool, sts *signer.AssumeRoleCache) *Client {
	return &Client{Pool: pool, STS: sts}
}

// httpClientFor returns the pooled *http.Client for ep.Service with no
// client-level timeout; the request context's deadline bounds the call.
func (c *Client) httpClientFor(ep Endpoint, t ProviderTarget) *http.Client {
	return c.Pool.Client(ep.Service, 0)
}

// do signs and sends a request built from ep and body, returning the raw
// response body on 2xx or an *errmap.Error on any other status.
func (c *Client) do(ctx context.Context, ep Endpoint, t ProviderTarget, body []byte) ([]byte, http.Header, error) {
	creds, err := ResolvedCredentials(ctx, t, c.STS)
	if err != nil {
		return nil, nil, err
	}

	signed, err := signer.Sign(creds, signer.Request{
		Method:  ep.Method,
		URL:     ep.URL,
		Region:  t.Region,
		Service: ep.Service,
		Body:    body,
	})
	if err != nil {
		return nil, nil, errmap.Credential(t.Provider, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, ep.Method, ep.URL.String(), reader)
	if err != nil {
		return nil, nil, errmap.IO(err)
	}
	req.Header = signed
	req.Header.Set("Host", ep.URL.Host)
	req.Header.Set("Content-Type", "application/json")
	if body != nil {
		req.ContentLength = int64(len(body))
	}

	resp, err := c.httpClientFor(ep, t).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, errmap.Timeout(t.Provider)
		}
		return nil, nil, errmap.IO(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errmap.IO(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusForbidden && t.AuthType == AuthAssumedRole && c.STS != nil {
			c.STS.Invalidate(t.RoleARN)
		}
		return nil, resp.Header, errmap.Upstream(t.Provider, resp.StatusCode, respBody)
	}
	return respBody, resp.Header, nil
}

// doJSON is do, decoding a JSON 2xx body into a map for transform input.
func (c *Client) doJSON(ctx context.Context, ep Endpoint, t ProviderTarget, body []byte) (map[string]interface{}, http.Header, error) {
	raw, headers, err := c.do(ctx, ep, t, body)
	if err != nil {
		return nil, headers, err
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, headers, errmap.Transform(t.Provider, fmt.Errorf("decode upstream body: %w", err))
	}
	return decoded, headers, nil
}
