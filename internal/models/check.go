package models

import "time"

// Check statuses.
const (
	StatusUp   = "UP"
	StatusLate = "LATE"
	StatusDown = "DOWN"
)

// CheckState is the liveness record of one job, keyed by JobName.
type CheckState struct {
	JobName             string     `json:"jobName"`
	Enabled             bool       `json:"enabled"`
	AlertOnFailure      bool       `json:"alertOnFailure"`
	AlertOnMiss         bool       `json:"alertOnMiss"`
	GraceSeconds        int        `json:"graceSeconds"`
	Status              string     `json:"status"`
	LastHeartbeatAt     *time.Time `json:"lastHeartbeatAt"`
	ExpectedNextAt      *time.Time `json:"expectedNextAt"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt"`
	LastFailureAt       *time.Time `json:"lastFailureAt"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// CheckConfig is the reconfigurable part of a CheckState, synced from event metadata.
type CheckConfig struct {
	Enabled        bool
	GraceSeconds   int
	AlertOnFailure bool
	AlertOnMiss    bool
}

// JobStatus is a check together with the newest event reported for it.
type JobStatus struct {
	CheckState
	LatestEvent *TelemetryEvent `json:"latestEvent"`
}

// JobDetail bundles everything the dashboard shows for one job.
type JobDetail struct {
	Check      CheckState       `json:"check"`
	Events     []TelemetryEvent `json:"events"`
	OpenAlerts []Alert          `json:"openAlerts"`
}
