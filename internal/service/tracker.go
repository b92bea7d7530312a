package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/models"
	"chief_monitor/internal/repository"
)

// Tracker applies job events to their CheckState and drives FAILURE/RECOVERY alerts.
type Tracker struct {
	checks repository.CheckRepo
	alerts *AlertManager
	locks  *jobLocks
	log    *logger.Logger
	now    func() time.Time
}

func NewTracker(checks repository.CheckRepo, alerts *AlertManager, locks *jobLocks, log *logger.Logger) *Tracker {
	return &Tracker{checks: checks, alerts: alerts, locks: locks, log: orNop(log), now: time.Now}
}

// Apply updates the check of ev.JobName. Events without a job are ignored.
// All work for one job is serialised; different jobs proceed in parallel.
func (t *Tracker) Apply(ctx context.Context, ev models.TelemetryEvent) error {
	job := ev.JobName
	if job == "" {
		return nil
	}
	unlock := t.locks.Lock(job)
	defer unlock()

	cfg := CheckConfigFromMetadata(ev.Metadata)
	now := t.now().UTC()
	if err := t.checks.UpsertConfig(ctx, job, cfg, now); err != nil {
		return err
	}

	if ev.EventType == models.EventJobNextScheduled {
		var next *time.Time
		if ts, ok := parseTimestamp(nonEmptyString(ev.Metadata[metaNextRunAt])); ok {
			next = &ts
		}
		return t.checks.SetExpectedNext(ctx, job, next, now)
	}
	if !models.IsHeartbeat(ev.EventType) {
		return nil
	}

	state, err := t.checks.Get(ctx, job)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("check %q vanished after upsert", job)
	}

	// RECOVERY is transient: the next heartbeat supersedes it whatever its outcome.
	if _, err := t.alerts.CloseOpenAlerts(ctx, job, models.AlertRecovery); err != nil {
		return err
	}

	at := ev.EventAt.UTC()
	state.LastHeartbeatAt = &at
	state.Status = models.StatusUp
	state.UpdatedAt = now

	var errs []error
	if cfg.AlertOnMiss {
		errs = append(errs, t.recoverFrom(ctx, ev, models.AlertMissed))
	}

	switch {
	case isFailure(ev):
		state.ConsecutiveFailures++
		state.LastFailureAt = &at
		if cfg.AlertOnFailure {
			_, _, err := t.alerts.OpenAlert(ctx, OpenAlertParams{
				JobName:   job,
				AlertType: models.AlertFailure,
				Severity:  models.SeverityError,
				DedupeKey: models.DedupeKey(job, models.AlertFailure),
				Title:     fmt.Sprintf("Job %s failed", job),
				Details: map[string]any{
					"eventType":  ev.EventType,
					"returnCode": ev.ReturnCode,
					"runId":      nilIfEmpty(ev.RunID),
				},
			})
			errs = append(errs, err)
		}
	case isSuccess(ev):
		state.ConsecutiveFailures = 0
		state.LastSuccessAt = &at
		if cfg.AlertOnFailure {
			errs = append(errs, t.recoverFrom(ctx, ev, models.AlertFailure))
		}
	}

	if err := t.checks.Save(ctx, *state); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// recoverFrom closes open alerts of sourceType and, if any were open, opens the matching RECOVERY.
func (t *Tracker) recoverFrom(ctx context.Context, ev models.TelemetryEvent, sourceType string) error {
	closed, err := t.alerts.CloseOpenAlerts(ctx, ev.JobName, sourceType)
	if err != nil || closed == 0 {
		return err
	}
	title := fmt.Sprintf("Job %s recovered from failure", ev.JobName)
	if sourceType == models.AlertMissed {
		title = fmt.Sprintf("Job %s recovered from missed heartbeat", ev.JobName)
	}
	_, _, err = t.alerts.OpenAlert(ctx, OpenAlertParams{
		JobName:   ev.JobName,
		AlertType: models.AlertRecovery,
		Severity:  models.SeverityInfo,
		DedupeKey: models.RecoveryDedupeKey(ev.JobName, sourceType),
		Title:     title,
		Details: map[string]any{
			"recoveredAt": ev.EventAt.UTC().Format(time.RFC3339Nano),
			"sourceEvent": ev.EventType,
		},
	})
	return err
}

func isFailure(ev models.TelemetryEvent) bool {
	return ev.EventType == models.EventJobFailed ||
		(ev.EventType == models.EventJobCompleted && ev.Success != nil && !*ev.Success)
}

func isSuccess(ev models.TelemetryEvent) bool {
	return ev.EventType == models.EventJobCompleted && ev.Success != nil && *ev.Success
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
