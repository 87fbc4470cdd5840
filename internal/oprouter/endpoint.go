/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Operation descriptor table: for every canonical
             operation, decides HTTP method, AWS service, base host,
             and endpoint path, following spec.md §4.3's rules
             exactly (Converse vs invoke path selection via
             bedrockcfg.IsConverseEligible, batch/fine-tune job
             paths, S3 multipart/attribute paths).
Root Cause:  Every handler needs the same method/service/path
             decision; a table keeps the mapping in one place instead
             of scattered per-handler URL building.
Context:     This package's Dispatch* functions call BuildEndpoint,
             then hand the resulting *url.URL to signer.Sign alongside
             the chosen Service.
Suitability: L3 — table-driven URL construction, the kind of thing
             the teacher's provider/pool.go and handler/proxy.go did
             inline; centralizing it here is the one generalization
             this router needs.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"fmt"
	"net/url"

	"github.com/AlfredDev/alfred-bedrock-core/internal/bedrockcfg"
	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
)

// Operation enumerates the canonical operations this core exposes.
type Operation string

const (
	OpChatCompletion    Operation = "chat.completion"
	OpEmbeddings        Operation = "embeddings"
	OpImageGeneration   Operation = "image.generation"
	OpBatchCreate       Operation = "batch.create"
	OpBatchGet          Operation = "batch.get"
	OpBatchList         Operation = "batch.list"
	OpBatchCancel       Operation = "batch.cancel"
	OpFineTuneCreate    Operation = "finetune.create"
	OpFineTuneGet       Operation = "finetune.get"
	OpFineTuneList      Operation = "finetune.list"
	OpFineTuneCancel    Operation = "finetune.cancel"
	OpFileUpload        Operation = "file.upload"
	OpFileRetrieve      Operation = "file.retrieve"
	OpFileContent       Operation = "file.content"
	OpFileList          Operation = "file.list"
	OpFileDelete        Operation = "file.delete"
)

// Endpoint is the resolved method/service/URL for one upstream call.
type Endpoint struct {
	Method  string
	Service signer.Service
	URL     *url.URL
}

func controlPlaneHost(region string) string {
	return fmt.Sprintf("bedrock.%s.amazonaws.com", region)
}

func runtimeHost(region string) string {
	return fmt.Sprintf("bedrock-runtime.%s.amazonaws.com", region)
}

// BuildEndpoint resolves op against t, following spec.md §4.3. jobID is
// only consulted for the *.get/*.cancel operations.
func BuildEndpoint(op Operation, t ProviderTarget, stream bool, jobID string) (Endpoint, error) {
	switch op {
	case OpChatCompletion:
		return chatEndpoint(t, stream)
	case OpEmbeddings, OpImageGeneration:
		return Endpoint{
			Method:  "POST",
			Service: signer.ServiceBedrockRuntime,
			URL:     &url.URL{Scheme: "https", Host: runtimeHost(t.Region), Path: fmt.Sprintf("/model/%s/invoke", url.PathEscape(t.BedrockModel))},
		}, nil
	case OpBatchCreate:
		return controlPlane(t, "POST", "/model-invocation-job"), nil
	case OpBatchGet:
		return controlPlane(t, "GET", "/model-invocation-job/"+url.PathEscape(jobID)), nil
	case OpBatchList:
		return controlPlane(t, "GET", "/model-invocation-jobs"), nil
	case OpBatchCancel:
		return controlPlane(t, "POST", "/model-invocation-job/"+url.PathEscape(jobID)+"/stop"), nil
	case OpFineTuneCreate:
		return controlPlane(t, "POST", "/model-customization-job"), nil
	case OpFineTuneGet:
		return controlPlane(t, "GET", "/model-customization-job/"+url.PathEscape(jobID)), nil
	case OpFineTuneList:
		return controlPlane(t, "GET", "/model-customization-jobs"), nil
	case OpFineTuneCancel:
		return controlPlane(t, "POST", "/model-customization-job/"+url.PathEscape(jobID)+"/stop"), nil
	case OpFileContent:
		return s3Endpoint(t, "GET", t.S3ObjectKey, ""), nil
	case OpFileRetrieve:
		return s3Endpoint(t, "GET", t.S3ObjectKey, "attributes="), nil
	default:
		return Endpoint{}, fmt.Errorf("oprouter: %s has no single-URL endpoint", op)
	}
}

func chatEndpoint(t ProviderTarget, stream bool) (Endpoint, error) {
	if t.BedrockModel == "" {
		return Endpoint{}, fmt.Errorf("oprouter: missing bedrock model id")
	}
	path := fmt.Sprintf("/model/%s/", url.PathEscape(t.BedrockModel))
	if bedrockcfg.IsConverseEligible(t.BedrockModel) {
		if stream {
			path += "converse-stream"
		} else {
			path += "converse"
		}
	} else {
		if stream {
			path += "invoke-with-response-stream"
		} else {
			path += "invoke"
		}
	}
	return Endpoint{
		Method:  "POST",
		Service: signer.ServiceBedrockRuntime,
		URL:     &url.URL{Scheme: "https", Host: runtimeHost(t.Region), Path: path},
	}, nil
}

func controlPlane(t ProviderTarget, method, path string) Endpoint {
	return Endpoint{
		Method:  method,
		Service: signer.ServiceBedrock,
		URL:     &url.URL{Scheme: "https", Host: controlPlaneHost(t.Region), Path: path},
	}
}

func s3Endpoint(t ProviderTarget, method, key, rawQuery string) Endpoint {
	return Endpoint{
		Method:  method,
		Service: signer.ServiceS3,
		URL: &url.URL{
			Scheme:   "https",
			Host:     fmt.Sprintf("%s.s3.%s.amazonaws.com", t.S3Bucket, t.Region),
			Path:     "/" + key,
			RawQuery: rawQuery,
		},
	}
}
