package oprouter

import (
	"strings"
	"testing"
)

func TestBuildEndpoint_ChatUsesConverseForEligibleModel(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1", BedrockModel: "anthropic.claude-3-sonnet-20240229-v1:0"}
	ep, err := BuildEndpoint(OpChatCompletion, target, false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(ep.URL.Path, "/converse") {
		t.Fatalf("expected converse path, got %s", ep.URL.Path)
	}
}

func TestBuildEndpoint_ChatUsesConverseStreamWhenStreaming(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1", BedrockModel: "anthropic.claude-3-sonnet-20240229-v1:0"}
	ep, err := BuildEndpoint(OpChatCompletion, target, true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(ep.URL.Path, "/converse-stream") {
		t.Fatalf("expected converse-stream path, got %s", ep.URL.Path)
	}
}

func TestBuildEndpoint_ChatUsesInvokeForInvokeOnlyModel(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1", BedrockModel: "meta.llama2-13b-chat-v1"}
	ep, err := BuildEndpoint(OpChatCompletion, target, false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(ep.URL.Path, "/invoke") {
		t.Fatalf("expected invoke path, got %s", ep.URL.Path)
	}
}

func TestBuildEndpoint_ChatMissingModelIsError(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1"}
	if _, err := BuildEndpoint(OpChatCompletion, target, false, ""); err == nil {
		t.Fatal("expected error for missing model id")
	}
}

func TestBuildEndpoint_BatchGetIncludesJobID(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1"}
	ep, err := BuildEndpoint(OpBatchGet, target, false, "job-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(ep.URL.Path, "/model-invocation-job/job-123") {
		t.Fatalf("expected job id in path, got %s", ep.URL.Path)
	}
	if ep.Method != "GET" {
		t.Fatalf("expected GET, got %s", ep.Method)
	}
}

func TestBuildEndpoint_FineTuneCancelUsesStopSuffix(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1"}
	ep, err := BuildEndpoint(OpFineTuneCancel, target, false, "ft-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(ep.URL.Path, "/model-customization-job/ft-1/stop") {
		t.Fatalf("expected stop suffix, got %s", ep.URL.Path)
	}
}

func TestBuildEndpoint_FileRetrieveUsesAttributesQuery(t *testing.T) {
	target := ProviderTarget{Region: "us-east-1", S3Bucket: "my-bucket", S3ObjectKey: "uploads/a.jsonl"}
	ep, err := BuildEndpoint(OpFileRetrieve, target, false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ep.URL.RawQuery != "attributes=" {
		t.Fatalf("expected attributes query, got %s", ep.URL.RawQuery)
	}
	if ep.URL.Host != "my-bucket.s3.us-east-1.amazonaws.com" {
		t.Fatalf("expected bucket-scoped host, got %s", ep.URL.Host)
	}
}
