package models

import (
	"time"
)

// StepStat aggregates execution outcomes for one operation signature
type StepStat struct {
	Signature     string    `json:"signature"`
	TotalSteps    int64     `json:"totalSteps"`
	TotalFailures int64     `json:"totalFailures"`
	AvgDurationMs float64   `json:"avgDurationMs"`
	MinDurationMs int64     `json:"minDurationMs"`
	MaxDurationMs int64     `json:"maxDurationMs"`
	LastExecuted  time.Time `json:"lastExecuted"`
}

// ExecutionStats is the aggregate view over all runs since startup
type ExecutionStats struct {
	TotalSteps    int64       `json:"totalSteps"`
	TotalFailures int64       `json:"totalFailures"`
	AvgDurationMs float64     `json:"avgDurationMs"`
	StartTime     time.Time   `json:"startTime"`
	Operations    []StepStat  `json:"operations"`
	RecentErrors  []StepError `json:"recentErrors"`
}

// StepError records one recent step failure for reporting
type StepError struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"runId"`
	Signature string    `json:"signature"`
	Status    int       `json:"statusCode,omitempty"`
	Reason    string    `json:"reason"`
}
