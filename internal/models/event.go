package models

import "time"

// Source types accepted on ingest.
const (
	SourceChief   = "chief"
	SourceWorker  = "worker"
	SourceMonitor = "monitor"
)

// Event levels, ordered by severity.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarn     = "WARN"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// Event types with special meaning to the check tracker.
const (
	EventJobStarted       = "job.started"
	EventJobCompleted     = "job.completed"
	EventJobFailed        = "job.failed"
	EventJobNextScheduled = "job.next_scheduled"
	EventChiefHeartbeat   = "chief.heartbeat"
)

// TelemetryEvent is a single append-only telemetry record.
type TelemetryEvent struct {
	ID           string         `json:"id"`
	ReceivedAt   time.Time      `json:"receivedAt"`
	EventAt      time.Time      `json:"eventAt"`
	SourceType   string         `json:"sourceType"`
	EventType    string         `json:"eventType"`
	Level        string         `json:"level"`
	Message      string         `json:"message"`
	JobName      string         `json:"jobName,omitempty"`
	ScriptPath   string         `json:"scriptPath,omitempty"`
	RunID        string         `json:"runId,omitempty"`
	ScheduledFor string         `json:"scheduledFor,omitempty"`
	Success      *bool          `json:"success,omitempty"`
	ReturnCode   *int           `json:"returnCode,omitempty"`
	DurationMs   *int64         `json:"durationMs,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

// IsHeartbeat reports whether eventType carries a liveness signal for a job.
func IsHeartbeat(eventType string) bool {
	switch eventType {
	case EventJobStarted, EventJobCompleted, EventJobFailed:
		return true
	}
	return false
}

// EventFilter narrows telemetry event listings. Zero values mean "no constraint".
type EventFilter struct {
	JobName    string
	ScriptPath string
	Level      string
	EventType  string
	From       time.Time // inclusive
	To         time.Time // inclusive
	Limit      int
	Offset     int
}
