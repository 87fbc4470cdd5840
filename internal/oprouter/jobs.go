/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Batch and fine-tuning job control-plane dispatch: maps
             the canonical OpenAI-shaped batch/fine-tune job requests
             onto Bedrock's CreateModelInvocationJob and
             CreateModelCustomizationJob control-plane calls, and maps
             their Get/List/Cancel responses back to the canonical
             BatchJob/FineTuneJob records, per spec.md §4.3's
             "Batch"/"Fine-tune" endpoint rules.
Root Cause:  Bedrock has no OpenAI-shaped batch/fine-tuning API of
             its own; every field here is a considered mapping onto
             Bedrock's actual job control-plane request/response
             shape, not a pass-through.
Context:     File input/output locations are S3 URIs built from the
             same ProviderTarget bucket/key headers the S3 file bridge
             uses, so a batch job's input/output naturally lines up
             with a file previously uploaded via internal/s3bridge.
Suitability: L3 — a declarative, infrequently-exercised control-plane
             mapping; correctness matters more than cleverness here.
──────────────────────────────────────────────────────────────
*/
package oprouter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

func s3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

func marshalBody(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// parseTimeField reads an RFC3339 timestamp field from a Bedrock job
// response, defaulting to 0 when absent or unparseable.
func parseTimeField(m map[string]interface{}, key string) int64 {
	s, ok := m[key].(string)
	if !ok {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// DispatchBatchCreate starts a Bedrock batch-inference job reading from
// req.InputFileID (an s3:// URI as returned by a prior file upload) and
// writing output to the target bucket under t.S3ObjectKey + "-output/".
func (c *Client) DispatchBatchCreate(ctx context.Context, req *schema.BatchCreateRequest, t ProviderTarget) (*schema.BatchJob, error) {
	if t.RoleARN == "" {
		return nil, errmap.Validation("batch job creation requires %sAws-Role-Arn", headerPrefix)
	}
	jobName := "batch-" + uuid.New().String()
	outputKey := t.S3ObjectKey + "-output/"
	body := map[string]interface{}{
		"jobName": jobName,
		"roleArn": t.RoleARN,
		"modelId": t.BedrockModel,
		"inputDataConfig": map[string]interface{}{
			"s3InputDataConfig": map[string]interface{}{"s3Uri": req.InputFileID},
		},
		"outputDataConfig": map[string]interface{}{
			"s3OutputDataConfig": map[string]interface{}{"s3Uri": s3URI(t.S3Bucket, outputKey)},
		},
	}
	raw, err := marshalBody(body)
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	ep, err := BuildEndpoint(OpBatchCreate, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	resp, _, err := c.doJSON(ctx, ep, t, raw)
	if err != nil {
		return nil, err
	}
	jobArn, _ := resp["jobArn"].(string)
	return &schema.BatchJob{
		ID:          jobArn,
		Object:      "batch",
		Status:      schema.BatchValidating,
		InputFileID: req.InputFileID,
		CreatedAt:   nowUnix(),
	}, nil
}

// DispatchBatchGet retrieves one Bedrock model-invocation job and maps it
// to the canonical BatchJob shape.
func (c *Client) DispatchBatchGet(ctx context.Context, jobID string, t ProviderTarget) (*schema.BatchJob, error) {
	ep, err := BuildEndpoint(OpBatchGet, t, false, jobID)
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	resp, _, err := c.doJSON(ctx, ep, t, nil)
	if err != nil {
		return nil, err
	}
	return mapBatchJob(resp), nil
}

// DispatchBatchList lists Bedrock model-invocation jobs.
func (c *Client) DispatchBatchList(ctx context.Context, t ProviderTarget) ([]schema.BatchJob, error) {
	ep, err := BuildEndpoint(OpBatchList, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	resp, _, err := c.doJSON(ctx, ep, t, nil)
	if err != nil {
		return nil, err
	}
	summaries, _ := resp["invocationJobSummaries"].([]interface{})
	out := make([]schema.BatchJob, 0, len(summaries))
	for _, s := range summaries {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, *mapBatchJob(m))
	}
	return out, nil
}

// DispatchBatchCancel stops an in-progress Bedrock model-invocation job.
func (c *Client) DispatchBatchCancel(ctx context.Context, jobID string, t ProviderTarget) (*schema.BatchJob, error) {
	ep, err := BuildEndpoint(OpBatchCancel, t, false, jobID)
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	if _, _, err := c.do(ctx, ep, t, []byte("{}")); err != nil {
		return nil, err
	}
	return c.DispatchBatchGet(ctx, jobID, t)
}

func mapBatchJob(resp map[string]interface{}) *schema.BatchJob {
	job := &schema.BatchJob{
		Object: "batch",
		ID:     stringField(resp, "jobArn"),
		Status: mapBedrockJobStatus(stringField(resp, "status")),
	}
	if v, ok := resp["inputDataConfig"].(map[string]interface{}); ok {
		if s3c, ok := v["s3InputDataConfig"].(map[string]interface{}); ok {
			job.InputFileID = stringField(s3c, "s3Uri")
		}
	}
	if v, ok := resp["outputDataConfig"].(map[string]interface{}); ok {
		if s3c, ok := v["s3OutputDataConfig"].(map[string]interface{}); ok {
			job.OutputFileID = stringField(s3c, "s3Uri")
		}
	}
	job.CreatedAt = parseTimeField(resp, "submitTime")
	return job
}

func mapBedrockJobStatus(s string) schema.BatchStatus {
	switch s {
	case "Submitted", "Validating":
		return schema.BatchValidating
	case "InProgress":
		return schema.BatchInProgress
	case "Completed":
		return schema.BatchCompleted
	case "Failed", "PartiallyCompleted":
		return schema.BatchFailed
	case "Stopping":
		return schema.BatchCancelling
	case "Stopped":
		return schema.BatchCancelled
	case "Expired":
		return schema.BatchExpired
	default:
		return schema.BatchValidating
	}
}

// DispatchFineTuneCreate starts a Bedrock model-customization job.
func (c *Client) DispatchFineTuneCreate(ctx context.Context, req *schema.FineTuneCreateRequest, t ProviderTarget) (*schema.FineTuneJob, error) {
	if t.RoleARN == "" {
		return nil, errmap.Validation("fine-tuning job creation requires %sAws-Role-Arn", headerPrefix)
	}
	jobName := "ft-" + uuid.New().String()
	outputKey := t.S3ObjectKey + "-ft-output/"
	body := map[string]interface{}{
		"jobName":         jobName,
		"customModelName": jobName,
		"roleArn":         t.RoleARN,
		"baseModelIdentifier": req.Model,
		"trainingDataConfig": map[string]interface{}{"s3Uri": req.TrainingFile},
		"outputDataConfig":   map[string]interface{}{"s3Uri": s3URI(t.S3Bucket, outputKey)},
	}
	if req.ValidationFile != "" {
		body["validationDataConfig"] = map[string]interface{}{
			"validators": []interface{}{map[string]interface{}{"s3Uri": req.ValidationFile}},
		}
	}
	if len(req.Hyperparameters) > 0 {
		body["hyperParameters"] = stringifyMap(req.Hyperparameters)
	}
	raw, err := marshalBody(body)
	if err != nil {
		return nil, errmap.Transform(t.Provider, err)
	}
	ep, err := BuildEndpoint(OpFineTuneCreate, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	resp, _, err := c.doJSON(ctx, ep, t, raw)
	if err != nil {
		return nil, err
	}
	jobArn, _ := resp["jobArn"].(string)
	return &schema.FineTuneJob{
		ID:           jobArn,
		Object:       "fine_tuning.job",
		Model:        req.Model,
		Status:       schema.FineTuneValidating,
		CreatedAt:    nowUnix(),
		TrainingFile: req.TrainingFile,
	}, nil
}

// DispatchFineTuneGet retrieves one Bedrock model-customization job.
func (c *Client) DispatchFineTuneGet(ctx context.Context, jobID string, t ProviderTarget) (*schema.FineTuneJob, error) {
	ep, err := BuildEndpoint(OpFineTuneGet, t, false, jobID)
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	resp, _, err := c.doJSON(ctx, ep, t, nil)
	if err != nil {
		return nil, err
	}
	return mapFineTuneJob(resp), nil
}

// DispatchFineTuneList lists Bedrock model-customization jobs.
func (c *Client) DispatchFineTuneList(ctx context.Context, t ProviderTarget) ([]schema.FineTuneJob, error) {
	ep, err := BuildEndpoint(OpFineTuneList, t, false, "")
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	resp, _, err := c.doJSON(ctx, ep, t, nil)
	if err != nil {
		return nil, err
	}
	summaries, _ := resp["modelCustomizationJobSummaries"].([]interface{})
	out := make([]schema.FineTuneJob, 0, len(summaries))
	for _, s := range summaries {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, *mapFineTuneJob(m))
	}
	return out, nil
}

// DispatchFineTuneCancel stops an in-progress Bedrock model-customization
// job.
func (c *Client) DispatchFineTuneCancel(ctx context.Context, jobID string, t ProviderTarget) (*schema.FineTuneJob, error) {
	ep, err := BuildEndpoint(OpFineTuneCancel, t, false, jobID)
	if err != nil {
		return nil, errmap.Validation("%v", err)
	}
	if _, _, err := c.do(ctx, ep, t, []byte("{}")); err != nil {
		return nil, err
	}
	return c.DispatchFineTuneGet(ctx, jobID, t)
}

func mapFineTuneJob(resp map[string]interface{}) *schema.FineTuneJob {
	job := &schema.FineTuneJob{
		Object:         "fine_tuning.job",
		ID:             stringField(resp, "jobArn"),
		Model:          stringField(resp, "baseModelArn"),
		Status:         mapBedrockCustomizationStatus(stringField(resp, "status")),
		FineTunedModel: stringField(resp, "outputModelArn"),
	}
	if v, ok := resp["trainingDataConfig"].(map[string]interface{}); ok {
		job.TrainingFile = stringField(v, "s3Uri")
	}
	job.CreatedAt = parseTimeField(resp, "creationTime")
	if msg := stringField(resp, "failureMessage"); msg != "" {
		job.Error = &schema.BatchError{Message: msg}
	}
	return job
}

func mapBedrockCustomizationStatus(s string) schema.FineTuneStatus {
	switch s {
	case "InProgress", "Training":
		return schema.FineTuneRunning
	case "Completed":
		return schema.FineTuneSucceeded
	case "Failed":
		return schema.FineTuneFailed
	case "Stopping", "Stopped":
		return schema.FineTuneCancelled
	default:
		return schema.FineTuneQueued
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringifyMap(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
