/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Resolves the per-request ProviderTarget (region,
             credentials, auth mode, S3 bucket/key, model id,
             encryption directives, compliance flag) from the
             vendor-prefixed request headers of spec.md §6. Nothing
             here reads an environment variable: every credential
             arrives on the request, matching the teacher's existing
             X-Alfred-* header convention in middleware/headers.go
             and handler/proxy.go.
Root Cause:  The core has no tenant/credential store of its own (out
             of scope per spec.md §1); the caller supplies AWS
             credentials fresh on every call.
Context:     internal/httpapi handlers call ResolveTarget first and
             hand the result to oprouter.Dispatch*; s3bridge.Client
             values are built directly from a ProviderTarget.
Suitability: L3 — a header-to-struct mapping with validation, small
             and easy to get wrong silently.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"context"
	"net/http"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
)

// AuthType enumerates the two credential modes spec.md §6 accepts.
type AuthType string

const (
	AuthStatic      AuthType = "static"
	AuthAssumedRole AuthType = "assumedRole"
)

// ModelType distinguishes chat-shaped from legacy text-completion-shaped
// invoke families, per the `…-model-type` header.
type ModelType string

const (
	ModelTypeChat ModelType = "chat"
	ModelTypeText ModelType = "text"
)

// ProviderTarget is every per-request piece of backend selection the
// operation router needs, resolved once per inbound request.
type ProviderTarget struct {
	Provider     string
	Region       string
	AuthType     AuthType
	Credentials  signer.Credentials
	RoleARN      string
	BedrockModel string
	S3Bucket     string
	S3ObjectKey  string
	SSE          string
	SSEKMSKeyID  string
	FilePurpose  string
	ModelType    ModelType
	Strict       bool
}

const headerPrefix = "X-Alfred-"

func h(r *http.Request, name string) string {
	return r.Header.Get(headerPrefix + name)
}

// ResolveTarget reads the `X-Alfred-*` headers off r and builds a
// ProviderTarget, or a ValidationError if a required header is absent
// or holds an unrecognised enum value.
func ResolveTarget(r *http.Request) (ProviderTarget, error) {
	t := ProviderTarget{
		Provider:     h(r, "Provider"),
		Region:       h(r, "Aws-Region"),
		BedrockModel: h(r, "Aws-Bedrock-Model"),
		S3Bucket:     h(r, "Aws-S3-Bucket"),
		S3ObjectKey:  h(r, "Aws-S3-Object-Key"),
		RoleARN:      h(r, "Aws-Role-Arn"),
		SSE:          h(r, "Aws-Server-Side-Encryption"),
		SSEKMSKeyID:  h(r, "Aws-Server-Side-Encryption-Kms-Key-Id"),
		FilePurpose:  h(r, "File-Purpose"),
	}

	if t.Provider == "" {
		return t, errmap.Validation("missing %sProvider header", headerPrefix)
	}
	if t.Region == "" {
		return t, errmap.Validation("missing %sAws-Region header", headerPrefix)
	}

	switch h(r, "Aws-Auth-Type") {
	case "", string(AuthStatic):
		t.AuthType = AuthStatic
	case string(AuthAssumedRole):
		t.AuthType = AuthAssumedRole
		if t.RoleARN == "" {
			return t, errmap.Validation("%sAws-Role-Arn is required when auth type is assumedRole", headerPrefix)
		}
	default:
		return t, errmap.Validation("unrecognised %sAws-Auth-Type value", headerPrefix)
	}

	t.Credentials = signer.Credentials{
		AccessKeyID:     h(r, "Aws-Access-Key-Id"),
		SecretAccessKey: h(r, "Aws-Secret-Access-Key"),
		SessionToken:    h(r, "Aws-Session-Token"),
	}
	if t.Credentials.AccessKeyID == "" || t.Credentials.SecretAccessKey == "" {
		return t, errmap.Validation("missing AWS credentials: %sAws-Access-Key-Id/%sAws-Secret-Access-Key are required", headerPrefix, headerPrefix)
	}

	switch h(r, "Model-Type") {
	case "", string(ModelTypeChat):
		t.ModelType = ModelTypeChat
	case string(ModelTypeText):
		t.ModelType = ModelTypeText
	default:
		return t, errmap.Validation("unrecognised %sModel-Type value", headerPrefix)
	}

	switch h(r, "Strict-Openai-Compliance") {
	case "true":
		t.Strict = true
	case "", "false":
		t.Strict = false
	default:
		return t, errmap.Validation("unrecognised %sStrict-Openai-Compliance value", headerPrefix)
	}

	if t.SSE != "" && t.SSE != "aws:kms" {
		return t, errmap.Validation("unsupported %sAws-Server-Side-Encryption value %q", headerPrefix, t.SSE)
	}

	return t, nil
}

// ResolvedCredentials returns the credentials to sign a request with,
// exchanging the caller-supplied base credentials for STS temporary
// credentials through cache when AuthType is assumedRole.
func ResolvedCredentials(ctx context.Context, t ProviderTarget, cache *signer.AssumeRoleCache) (signer.Credentials, error) {
	if t.AuthType != AuthAssumedRole {
		return t.Credentials, nil
	}
	creds, err := cache.Get(ctx, t.Region, t.RoleARN, t.Credentials)
	if err != nil {
		return signer.Credentials{}, errmap.Credential(t.Provider, err)
	}
	return creds, nil
}
