package models

import "time"

// TaskType classifies what kind of work a telemetry event describes.
type TaskType string

const (
	TaskChat   TaskType = "chat"
	TaskCode   TaskType = "code"
	TaskVision TaskType = "vision"
	TaskAudio  TaskType = "audio"
)

// IsValid checks if the task type is part of the enumeration
func (t TaskType) IsValid() bool {
	switch t {
	case TaskChat, TaskCode, TaskVision, TaskAudio:
		return true
	default:
		return false
	}
}

// TelemetryEvent is a single usage or error observation. Events are
// ephemeral: constructed, redacted, emitted, discarded. The gateway never
// persists them itself; workers only forward them to log output. Timestamp
// is assigned at emission, not by the caller.
type TelemetryEvent struct {
	Alias        string    `json:"alias"`
	TaskType     TaskType  `json:"task_type"`
	LatencyMS    *int64    `json:"latency_ms,omitempty"`
	InputTokens  *int64    `json:"input_tokens,omitempty"`
	OutputTokens *int64    `json:"output_tokens,omitempty"`
	CostUSD      *float64  `json:"cost_usd,omitempty"`
	ErrorClass   string    `json:"error_class,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
