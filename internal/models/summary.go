package models

import "time"

// Summary is the read-only rollup shown on the overview page.
type Summary struct {
	Checks        map[string]int `json:"checks"`
	ActiveAlerts  map[string]int `json:"activeAlerts"`
	TotalEvents   int64          `json:"totalEvents"`
	LatestEventAt *time.Time     `json:"latestEventAt"`
	Chief         ChiefPresence  `json:"chief"`
}

// ChiefPresence describes whether the upstream orchestrator is still reporting.
type ChiefPresence struct {
	Online              bool       `json:"online"`
	LastHeartbeatAt     *time.Time `json:"lastHeartbeatAt"`
	PingIntervalSeconds *int       `json:"pingIntervalSeconds"`
	OfflineAfterSeconds int        `json:"offlineAfterSeconds"`
}
