package models

import "time"

// Alert types.
const (
	AlertFailure  = "FAILURE"
	AlertMissed   = "MISSED"
	AlertRecovery = "RECOVERY"
)

// Alert severities.
const (
	SeverityInfo     = "INFO"
	SeverityWarn     = "WARN"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// Alert statuses.
const (
	AlertOpen   = "OPEN"
	AlertClosed = "CLOSED"
)

// Delivery statuses recorded for notification attempts.
const (
	DeliveryStub   = "STUB"
	DeliverySent   = "SENT"
	DeliveryFailed = "FAILED"
)

// Alert is one occurrence of a FAILURE, MISSED or RECOVERY condition.
// At most one OPEN alert exists per DedupeKey.
type Alert struct {
	ID        int64          `json:"id"`
	JobName   string         `json:"jobName"`
	AlertType string         `json:"alertType"`
	Severity  string         `json:"severity"`
	Status    string         `json:"status"`
	OpenedAt  time.Time      `json:"openedAt"`
	ClosedAt  *time.Time     `json:"closedAt"`
	DedupeKey string         `json:"dedupeKey"`
	Title     string         `json:"title"`
	Details   map[string]any `json:"details"`
}

// AlertDelivery records one notification attempt for an alert.
type AlertDelivery struct {
	ID           int64     `json:"id"`
	AlertID      int64     `json:"alertId"`
	Channel      string    `json:"channel"`
	AttemptedAt  time.Time `json:"attemptedAt"`
	Status       string    `json:"status"`
	ResponseCode *int      `json:"responseCode"`
	ErrorText    string    `json:"errorText,omitempty"`
}

// AlertFilter narrows alert listings. Empty strings mean "any".
type AlertFilter struct {
	JobName   string
	Status    string
	AlertType string
	Severity  string
	Limit     int
	Offset    int
}

// DedupeKey builds the uniqueness key for FAILURE and MISSED alerts.
func DedupeKey(jobName, alertType string) string {
	return jobName + ":" + alertType
}

// RecoveryDedupeKey builds the key of a RECOVERY alert for the condition it clears.
func RecoveryDedupeKey(jobName, sourceAlertType string) string {
	return jobName + ":" + AlertRecovery + ":" + sourceAlertType
}
