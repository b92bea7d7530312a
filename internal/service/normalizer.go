package service

import (
	"strings"
	"time"

	"chief_monitor/internal/models"
)

var (
	validSources = map[string]bool{
		models.SourceChief:   true,
		models.SourceWorker:  true,
		models.SourceMonitor: true,
	}
	validLevels = map[string]bool{
		models.LevelDebug:    true,
		models.LevelInfo:     true,
		models.LevelWarn:     true,
		models.LevelError:    true,
		models.LevelCritical: true,
	}
)

// NormalizeEvents validates raw decoded JSON records and returns the accepted events
// together with the number of dropped records. receivedAt stamps every accepted event.
func NormalizeEvents(raw []any, receivedAt time.Time) ([]models.TelemetryEvent, int) {
	receivedAt = receivedAt.UTC()
	out := make([]models.TelemetryEvent, 0, len(raw))
	for _, r := range raw {
		if ev, ok := normalizeEvent(r, receivedAt); ok {
			out = append(out, ev)
		}
	}
	return out, len(raw) - len(out)
}

func normalizeEvent(raw any, receivedAt time.Time) (models.TelemetryEvent, bool) {
	rec, ok := raw.(map[string]any)
	if !ok {
		return models.TelemetryEvent{}, false
	}

	source := strings.ToLower(nonEmptyString(rec["sourceType"]))
	level := strings.ToUpper(nonEmptyString(rec["level"]))
	message := nonEmptyString(rec["message"])
	eventType := nonEmptyString(rec["eventType"])
	if !validSources[source] || !validLevels[level] || message == "" || eventType == "" {
		return models.TelemetryEvent{}, false
	}

	ev := models.TelemetryEvent{
		ReceivedAt:   receivedAt,
		EventAt:      receivedAt,
		SourceType:   source,
		EventType:    eventType,
		Level:        level,
		Message:      message,
		JobName:      nonEmptyString(rec["jobName"]),
		ScriptPath:   nonEmptyString(rec["scriptPath"]),
		RunID:        nonEmptyString(rec["runId"]),
		ScheduledFor: nonEmptyString(rec["scheduledFor"]),
		Metadata:     map[string]any{},
	}
	if t, ok := parseTimestamp(nonEmptyString(rec["eventAt"])); ok {
		ev.EventAt = t
	}
	if b, ok := rec["success"].(bool); ok {
		ev.Success = &b
	}
	if rc, ok := asInt32(rec["returnCode"]); ok {
		ev.ReturnCode = &rc
	}
	if d, ok := asInt64(rec["durationMs"]); ok {
		ev.DurationMs = &d
	}
	if meta, ok := rec["metadata"].(map[string]any); ok && meta != nil {
		ev.Metadata = meta
	}
	return ev, true
}
