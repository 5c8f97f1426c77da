package models

import (
	"time"
)

// StepStatus tracks one step through its state machine:
// pending → building-request → sent → {succeeded, failed}
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepBuilding  StepStatus = "building-request"
	StepSent      StepStatus = "sent"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// RunStatus is the overall outcome of one sequence execution
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunAborted   RunStatus = "aborted"
)

// ExecutionStep records one executed (or attempted) request within a sequence
type ExecutionStep struct {
	Signature     string            `json:"signature"`
	URL           string            `json:"url"`
	PathParams    map[string]string `json:"pathParams,omitempty"`
	QueryParams   map[string]string `json:"queryParams,omitempty"`
	RequestBody   string            `json:"requestBody,omitempty"`
	StatusCode    int               `json:"statusCode,omitempty"`
	ResponseBody  string            `json:"responseBody,omitempty"`
	DurationMs    int64             `json:"durationMs"`
	Status        StepStatus        `json:"status"`
	FailureReason string            `json:"failureReason,omitempty"`
}

// SequenceExecutionResult is the outcome of executing one sequence against a
// live base URL. Created fresh per run; never reused.
type SequenceExecutionResult struct {
	ID         string          `json:"id"`
	SequenceID string          `json:"sequenceId"`
	SpecID     string          `json:"specId,omitempty"`
	BaseURL    string          `json:"baseUrl"`
	Steps      []ExecutionStep `json:"steps"`
	Status     RunStatus       `json:"status"`

	// Bindings is the final value-binding table: attribute name → the most
	// recently observed value from any step's response.
	Bindings map[string]string `json:"bindings,omitempty"`

	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}
