package schema

// BatchCreateRequest is the canonical OpenAI-shaped batch job creation
// request body.
type BatchCreateRequest struct {
	InputFileID      string            `json:"input_file_id"`
	Endpoint         string            `json:"endpoint"`
	CompletionWindow string            `json:"completion_window,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// FineTuneCreateRequest is the canonical OpenAI-shaped fine-tuning job
// creation request body.
type FineTuneCreateRequest struct {
	Model          string            `json:"model"`
	TrainingFile   string            `json:"training_file"`
	ValidationFile string            `json:"validation_file,omitempty"`
	Suffix         string            `json:"suffix,omitempty"`
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`
}

// BatchStatus enumerates canonical batch job lifecycle states.
type BatchStatus string

const (
	BatchValidating BatchStatus = "validating"
	BatchInProgress BatchStatus = "in_progress"
	BatchFinalizing BatchStatus = "finalizing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchExpired    BatchStatus = "expired"
	BatchCancelling BatchStatus = "cancelling"
	BatchCancelled  BatchStatus = "cancelled"
)

// BatchJob is the canonical OpenAI-shaped batch job record.
type BatchJob struct {
	ID               string         `json:"id"`
	Object           string         `json:"object"`
	Status           BatchStatus    `json:"status"`
	InputFileID      string         `json:"input_file_id"`
	OutputFileID     string         `json:"output_file_id,omitempty"`
	ErrorFileID      string         `json:"error_file_id,omitempty"`
	CreatedAt        int64          `json:"created_at"`
	InProgressAt     *int64         `json:"in_progress_at,omitempty"`
	FinalizingAt     *int64         `json:"finalizing_at,omitempty"`
	CompletedAt      *int64         `json:"completed_at,omitempty"`
	FailedAt         *int64         `json:"failed_at,omitempty"`
	ExpiredAt        *int64         `json:"expired_at,omitempty"`
	CancellingAt     *int64         `json:"cancelling_at,omitempty"`
	CancelledAt      *int64         `json:"cancelled_at,omitempty"`
	RequestCounts    BatchCounts    `json:"request_counts"`
	Errors           []BatchError   `json:"errors,omitempty"`
}

// BatchCounts tallies batch row outcomes.
type BatchCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// BatchError is a single row-level batch failure.
type BatchError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Line    *int   `json:"line,omitempty"`
}

// BatchOutputRow is one NDJSON row of a batch output file.
type BatchOutputRow struct {
	ID       string              `json:"id"`
	CustomID string              `json:"custom_id"`
	Response *BatchOutputRowResp `json:"response"`
	Error    *BatchError         `json:"error"`
}

// BatchOutputRowResp is the nested response envelope of a batch output row.
type BatchOutputRowResp struct {
	StatusCode int             `json:"status_code"`
	RequestID  string          `json:"request_id"`
	Body       interface{}     `json:"body"`
}

// FineTuneStatus enumerates canonical fine-tuning job lifecycle states.
type FineTuneStatus string

const (
	FineTuneValidating FineTuneStatus = "validating_files"
	FineTuneQueued     FineTuneStatus = "queued"
	FineTuneRunning    FineTuneStatus = "running"
	FineTuneSucceeded  FineTuneStatus = "succeeded"
	FineTuneFailed     FineTuneStatus = "failed"
	FineTuneCancelled  FineTuneStatus = "cancelled"
)

// FineTuneJob is the canonical OpenAI-shaped fine-tuning job record.
type FineTuneJob struct {
	ID              string         `json:"id"`
	Object          string         `json:"object"`
	Model           string         `json:"model"`
	Status          FineTuneStatus `json:"status"`
	CreatedAt       int64          `json:"created_at"`
	FinishedAt      *int64         `json:"finished_at,omitempty"`
	TrainingFile    string         `json:"training_file"`
	ValidationFile  string         `json:"validation_file,omitempty"`
	FineTunedModel  string         `json:"fine_tuned_model,omitempty"`
	Error           *BatchError    `json:"error,omitempty"`
}

// FilePurpose enumerates the accepted uses of an uploaded file.
type FilePurpose string

const (
	PurposeBatch    FilePurpose = "batch"
	PurposeFineTune FilePurpose = "fine-tune"
)

// FileObject is the canonical OpenAI-shaped uploaded-file record.
type FileObject struct {
	ID        string      `json:"id"`
	Object    string      `json:"object"`
	Bytes     int64       `json:"bytes"`
	CreatedAt int64       `json:"created_at"`
	Filename  string      `json:"filename"`
	Purpose   FilePurpose `json:"purpose,omitempty"`
	Status    string      `json:"status"`
}

// ErrorEnvelope is the canonical error response body.
type ErrorEnvelope struct {
	Error    ErrorDetail `json:"error"`
	Provider string      `json:"provider,omitempty"`
}

// ErrorDetail carries the normalized error fields.
type ErrorDetail struct {
	Message string  `json:"message"`
	Type    *string `json:"type,omitempty"`
	Param   *string `json:"param,omitempty"`
	Code    *string `json:"code,omitempty"`
}
