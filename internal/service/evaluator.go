package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/models"
	"chief_monitor/internal/repository"
)

// EvaluationResult counts what one sweep observed. OpenedMissed only counts new alerts.
type EvaluationResult struct {
	Late         int `json:"late"`
	Down         int `json:"down"`
	OpenedMissed int `json:"openedMissed"`
}

// Evaluator compares each enabled check's expected run time with the clock.
type Evaluator struct {
	checks      repository.CheckRepo
	alerts      *AlertManager
	locks       *jobLocks
	recoveryTTL time.Duration
	log         *logger.Logger
	now         func() time.Time
}

func NewEvaluator(checks repository.CheckRepo, alerts *AlertManager, locks *jobLocks, recoveryTTL time.Duration, log *logger.Logger) *Evaluator {
	return &Evaluator{
		checks:      checks,
		alerts:      alerts,
		locks:       locks,
		recoveryTTL: recoveryTTL,
		log:         orNop(log),
		now:         time.Now,
	}
}

// EvaluateChecks runs one sweep. Status rows are written only on transitions and a
// MISSED alert is opened only when a check enters DOWN. A failing check does not stop
// the sweep; errors are joined and returned at the end.
func (e *Evaluator) EvaluateChecks(ctx context.Context) (EvaluationResult, error) {
	var res EvaluationResult
	var errs []error

	if _, err := e.alerts.CloseStaleRecoveryAlerts(ctx, e.recoveryTTL); err != nil {
		errs = append(errs, err)
	}

	checks, err := e.checks.ListEnabled(ctx)
	if err != nil {
		return res, errors.Join(append(errs, err)...)
	}

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return res, errors.Join(append(errs, err)...)
		}
		if c.ExpectedNextAt == nil {
			continue
		}
		if err := e.evaluate(ctx, c.JobName, &res); err != nil {
			errs = append(errs, err)
		}
	}
	return res, errors.Join(errs...)
}

// evaluate re-reads the check under its job lock so it never acts on a stale status.
func (e *Evaluator) evaluate(ctx context.Context, job string, res *EvaluationResult) error {
	unlock := e.locks.Lock(job)
	defer unlock()

	c, err := e.checks.Get(ctx, job)
	if err != nil {
		return err
	}
	if c == nil || !c.Enabled || c.ExpectedNextAt == nil {
		return nil
	}

	now := e.now().UTC()
	target := classify(now, *c.ExpectedNextAt, c.GraceSeconds)
	switch target {
	case models.StatusDown:
		res.Down++
	case models.StatusLate:
		res.Late++
	}
	if c.Status == target {
		return nil
	}

	// Open MISSED before persisting DOWN, so a failed open is retried next sweep.
	if target == models.StatusDown && c.AlertOnMiss {
		_, created, err := e.alerts.OpenAlert(ctx, OpenAlertParams{
			JobName:   job,
			AlertType: models.AlertMissed,
			Severity:  models.SeverityWarn,
			DedupeKey: models.DedupeKey(job, models.AlertMissed),
			Title:     fmt.Sprintf("Job %s missed expected heartbeat", job),
			Details: map[string]any{
				"expectedNextAt": c.ExpectedNextAt.UTC().Format(time.RFC3339Nano),
				"graceSeconds":   c.GraceSeconds,
				"observedAt":     now.Format(time.RFC3339Nano),
			},
		})
		if err != nil {
			return err
		}
		if created {
			res.OpenedMissed++
		}
	}

	if err := e.checks.SetStatus(ctx, job, target, now); err != nil {
		return err
	}
	e.log.Infow("check_status_changed", "job", job, "from", c.Status, "to", target)
	return nil
}

// classify maps the lateness of expected at now onto a check status.
// Lateness is counted in whole seconds.
func classify(now, expected time.Time, graceSeconds int) string {
	diff := int64(math.Floor(now.Sub(expected).Seconds()))
	switch {
	case diff > int64(graceSeconds):
		return models.StatusDown
	case diff > 0:
		return models.StatusLate
	default:
		return models.StatusUp
	}
}
