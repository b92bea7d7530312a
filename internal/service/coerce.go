package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"chief_monitor/internal/models"
)

// Check configuration keys read from event metadata.
const (
	metaCheckEnabled   = "check_enabled"
	metaGraceSeconds   = "grace_seconds"
	metaAlertOnFailure = "alert_on_failure"
	metaAlertOnMiss    = "alert_on_miss"
	metaNextRunAt      = "next_run_at"
	metaPingInterval   = "ping_interval_seconds"

	DefaultGraceSeconds = 120
)

// CheckConfigFromMetadata turns untyped event metadata into a CheckConfig.
// Missing or mistyped keys fall back to defaults: enabled, 120s grace, both alert kinds on.
func CheckConfigFromMetadata(meta map[string]any) models.CheckConfig {
	grace := asInt(meta[metaGraceSeconds], DefaultGraceSeconds)
	if grace < 0 {
		grace = 0
	}
	return models.CheckConfig{
		Enabled:        asBool(meta[metaCheckEnabled], true),
		GraceSeconds:   grace,
		AlertOnFailure: asBool(meta[metaAlertOnFailure], true),
		AlertOnMiss:    asBool(meta[metaAlertOnMiss], true),
	}
}

// asBool accepts real booleans and the strings "true"/"false" in any case.
func asBool(v any, fallback bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return fallback
}

// asInt accepts finite in-range numbers (truncated) and strings with a leading decimal integer.
func asInt(v any, fallback int) int {
	if n, ok := asInt64(v); ok && n >= math.MinInt && n <= math.MaxInt {
		return int(n)
	}
	if s, ok := v.(string); ok {
		if n, ok := leadingInt(s); ok {
			return n
		}
	}
	return fallback
}

// positiveIntOrNil is asInt without a fallback, rejecting values <= 0.
func positiveIntOrNil(v any) *int {
	const unset = math.MinInt
	n := asInt(v, unset)
	if n == unset || n <= 0 {
		return nil
	}
	return &n
}

// asNumber reports v as a truncated float when it is a finite JSON number.
func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Trunc(f), true
}

// asInt32 is asNumber limited to the int32 range; anything outside counts as mistyped.
func asInt32(v any) (int, bool) {
	f, ok := asNumber(v)
	if !ok || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// asInt64 is asNumber limited to the int64 range. float64(math.MaxInt64) rounds up
// to 2^63, hence the strict upper bound.
func asInt64(v any) (int64, bool) {
	f, ok := asNumber(v)
	if !ok || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// leadingInt parses an optional sign followed by digits, ignoring trailing text ("30s" -> 30).
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// nonEmptyString returns the trimmed string value of v, or "" for anything else.
func nonEmptyString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp parses ISO-8601 style timestamps. Values without a zone are taken as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
