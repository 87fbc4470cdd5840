/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Retrieval side of the S3 file bridge: streams an object's
             body back to the caller, rewriting each Bedrock batch
             output row (`{recordId, modelOutput}`) into the canonical
             BatchOutputRow shape as it passes through, and serves
             anything else (fine-tune output, plain uploads) as an
             identity passthrough, per spec.md §4.7. Also synthesizes
             a canonical FileObject from S3's object-attributes
             response for file metadata retrieval.
Root Cause:  A batch output file's rows are in Bedrock's native job
             shape; clients expect OpenAI-shaped batch output rows.
Context:     internal/httpapi's GET /files/{id}/content handler reads
             from the io.ReadCloser this returns until EOF.
Suitability: L3 — line-at-a-time streaming transform, mirrors
             upload.go's structure in reverse.
──────────────────────────────────────────────────────────────
*/
package s3bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/AlfredDev/alfred-bedrock-core/internal/bedrockcfg"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// bedrockBatchOutputRow is one line of a Bedrock model-invocation job's
// native output file.
type bedrockBatchOutputRow struct {
	RecordID    string                 `json:"recordId"`
	ModelOutput map[string]interface{} `json:"modelOutput"`
	Error       *bedrockBatchRowError  `json:"error"`
}

type bedrockBatchRowError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// RetrieveContent streams key's object body, rewriting any Bedrock batch
// output rows it recognizes into canonical BatchOutputRow NDJSON and
// passing every other line through unchanged.
func (c *Client) RetrieveContent(ctx context.Context, key string, modelID string) (io.ReadCloser, error) {
	body, _, err := c.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	family := bedrockcfg.DetectFamily(modelID)

	pr, pw := io.Pipe()
	go func() {
		defer body.Close()
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
		var closeErr error
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			out, ok := transformBatchOutputLine(line, family)
			if !ok {
				out = append(append([]byte(nil), line...), '\n')
			}
			if _, werr := pw.Write(out); werr != nil {
				closeErr = werr
				break
			}
		}
		if closeErr == nil {
			closeErr = scanner.Err()
		}
		pw.CloseWithError(closeErr)
	}()
	return pr, nil
}

// transformBatchOutputLine rewrites line into a canonical BatchOutputRow
// if it parses as a Bedrock batch output row; ok is false for any line
// that doesn't (fine-tune output, non-JSON data), signalling the caller
// to pass the original bytes through unchanged. A row's modelOutput is
// always in its family's native invoke response shape, mirroring how
// buildBatchModelInput always submits the job in that family's native
// invoke request shape (Bedrock batch jobs never use Converse).
func transformBatchOutputLine(line []byte, family bedrockcfg.Family) ([]byte, bool) {
	var native bedrockBatchOutputRow
	if err := json.Unmarshal(line, &native); err != nil || native.RecordID == "" {
		return nil, false
	}

	row := schema.BatchOutputRow{ID: native.RecordID, CustomID: native.RecordID}
	if native.Error != nil {
		row.Error = &schema.BatchError{Code: native.Error.ErrorCode, Message: native.Error.ErrorMessage}
	} else if native.ModelOutput != nil {
		var body interface{} = native.ModelOutput
		if family == bedrockcfg.FamilyAnthropicConverse {
			if canonical, err := bedrockcfg.TransformAnthropicNativeResponse(native.ModelOutput, "", 0, native.RecordID, false); err == nil {
				body = canonical
			}
		} else {
			nativeFamily := family
			if mapped, ok := batchNativeInvokeFamily[family]; ok {
				nativeFamily = mapped
			}
			if canonical, err := bedrockcfg.TransformInvokeResponse(native.ModelOutput, nativeFamily, "", 0, native.RecordID, 0, 0); err == nil {
				body = canonical
			}
		}
		row.Response = &schema.BatchOutputRowResp{StatusCode: http.StatusOK, RequestID: native.RecordID, Body: body}
	}

	out, err := json.Marshal(row)
	if err != nil {
		return nil, false
	}
	return append(out, '\n'), true
}

// RetrieveMetadata reads key's S3 attributes and synthesizes a canonical
// FileObject, per spec.md §4.7's "Retrieve metadata" rule.
func (c *Client) RetrieveMetadata(ctx context.Context, key string) (*schema.FileObject, error) {
	attrs, err := c.GetObjectAttributes(ctx, key)
	if err != nil {
		return nil, err
	}
	return &schema.FileObject{
		ID:        fmt.Sprintf("s3://%s/%s", c.Bucket, key),
		Object:    "file",
		Bytes:     attrs.ObjectSize,
		CreatedAt: attrs.LastModified.Unix(),
		Filename:  path.Base(key),
		Status:    "processed",
	}, nil
}
