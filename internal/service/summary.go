package service

import (
	"context"
	"fmt"
	"time"

	"chief_monitor/internal/models"
	"chief_monitor/internal/repository"
)

const (
	defaultChiefOfflineAfter = 45
	minChiefOfflineAfter     = 5
)

// StatusService is the read-only aggregator behind the dashboard.
type StatusService struct {
	events repository.EventRepo
	checks repository.CheckRepo
	alerts repository.AlertRepo
	now    func() time.Time
}

func NewStatusService(events repository.EventRepo, checks repository.CheckRepo, alerts repository.AlertRepo) *StatusService {
	return &StatusService{events: events, checks: checks, alerts: alerts, now: time.Now}
}

// Summary rolls up check statuses, open alerts, event totals and chief presence.
func (s *StatusService) Summary(ctx context.Context) (models.Summary, error) {
	checks, err := s.checks.CountByStatus(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	active, err := s.alerts.CountOpenByType(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	total, err := s.events.Count(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	latest, err := s.events.LatestEventAt(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	hb, err := s.events.LatestBySourceAndType(ctx, models.SourceChief, models.EventChiefHeartbeat)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}

	return models.Summary{
		Checks:        checks,
		ActiveAlerts:  active,
		TotalEvents:   total,
		LatestEventAt: latest,
		Chief:         chiefPresence(hb, s.now().UTC()),
	}, nil
}

// chiefPresence treats the chief as online while its last heartbeat is younger than
// twice its advertised ping interval (at least 5s, 45s when not advertised).
func chiefPresence(hb *models.TelemetryEvent, now time.Time) models.ChiefPresence {
	p := models.ChiefPresence{OfflineAfterSeconds: defaultChiefOfflineAfter}
	if hb == nil {
		return p
	}
	if ping := positiveIntOrNil(hb.Metadata[metaPingInterval]); ping != nil {
		p.PingIntervalSeconds = ping
		p.OfflineAfterSeconds = max(minChiefOfflineAfter, 2*(*ping))
	}
	at := hb.EventAt.UTC()
	p.LastHeartbeatAt = &at
	p.Online = now.Sub(at) <= time.Duration(p.OfflineAfterSeconds)*time.Second
	return p
}

// Jobs lists every check with its most recent event.
func (s *StatusService) Jobs(ctx context.Context) ([]models.JobStatus, error) {
	checks, err := s.checks.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.JobStatus, 0, len(checks))
	for _, c := range checks {
		latest, err := s.events.LatestForJob(ctx, c.JobName)
		if err != nil {
			return nil, fmt.Errorf("latest event for %q: %w", c.JobName, err)
		}
		out = append(out, models.JobStatus{CheckState: c, LatestEvent: latest})
	}
	return out, nil
}

// JobDetail returns the check, its newest events and its open alerts.
func (s *StatusService) JobDetail(ctx context.Context, jobName string) (models.JobDetail, error) {
	c, err := s.checks.Get(ctx, jobName)
	if err != nil {
		return models.JobDetail{}, err
	}
	if c == nil {
		return models.JobDetail{}, ErrJobNotFound
	}
	events, err := s.events.List(ctx, models.EventFilter{JobName: jobName, Limit: JobDetailEvents})
	if err != nil {
		return models.JobDetail{}, err
	}
	open, err := s.alerts.ListOpenForJob(ctx, jobName)
	if err != nil {
		return models.JobDetail{}, err
	}
	return models.JobDetail{Check: *c, Events: events, OpenAlerts: open}, nil
}
