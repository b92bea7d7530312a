package service

import (
	"context"
	"fmt"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/repository"
)

// IngestResult is returned to producers after a single or batch ingest.
type IngestResult struct {
	Inserted int `json:"inserted"`
	Dropped  int `json:"dropped"`
}

// IngestService stores telemetry and feeds job events into the tracker.
type IngestService struct {
	events  repository.EventRepo
	tracker *Tracker
	log     *logger.Logger
	now     func() time.Time
}

func NewIngestService(events repository.EventRepo, tracker *Tracker, log *logger.Logger) *IngestService {
	return &IngestService{events: events, tracker: tracker, log: orNop(log), now: time.Now}
}

// BatchRecords unwraps a decoded batch body: either a bare list or {"events": [...]}.
func BatchRecords(body any) ([]any, error) {
	switch v := body.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, ok := v["events"].([]any); ok {
			return list, nil
		}
	}
	return nil, ErrInvalidPayload
}

// IngestEvents normalizes raw records, persists the valid ones in order and applies
// each to its job's check. Invalid records are counted as dropped. A tracker failure
// is logged and does not undo the stored event.
func (s *IngestService) IngestEvents(ctx context.Context, raw []any) (IngestResult, error) {
	events, dropped := NormalizeEvents(raw, s.now().UTC())
	res := IngestResult{Dropped: dropped}

	for _, ev := range events {
		stored, err := s.events.Append(ctx, ev)
		if err != nil {
			return res, fmt.Errorf("append event: %w", err)
		}
		res.Inserted++
		if err := s.tracker.Apply(ctx, stored); err != nil {
			s.log.Errorw("check_apply_failed", "job", stored.JobName, "event_id", stored.ID, "err", err)
		}
	}
	if dropped > 0 {
		s.log.Debugw("events_dropped", "dropped", dropped, "inserted", res.Inserted)
	}
	return res, nil
}
