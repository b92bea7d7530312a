package service

import (
	"context"
	"strings"
	"time"

	"chief_monitor/internal/models"
	"chief_monitor/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter trims text filters, canonicalises the level and
// validates the time range.
func normalizeAndValidateFilter(f models.EventFilter) (models.EventFilter, error) {
	f.From = normalizeToUTC(f.From)
	f.To = normalizeToUTC(f.To)
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return models.EventFilter{}, ErrInvalidTimeRange
	}
	f.JobName = strings.TrimSpace(f.JobName)
	f.ScriptPath = strings.TrimSpace(f.ScriptPath)
	f.EventType = strings.TrimSpace(f.EventType)
	f.Level = strings.ToUpper(strings.TrimSpace(f.Level))
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	return f, nil
}

// ListEvents returns events newest first.
func (s *EventLogService) ListEvents(ctx context.Context, f models.EventFilter) ([]models.TelemetryEvent, error) {
	f, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, f)
}
