package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chief_monitor/internal/models"
)

type CheckSQL struct {
	db *sql.DB
	d  Dialect
}

func NewCheckSQL(db *sql.DB, d Dialect) *CheckSQL { return &CheckSQL{db: db, d: d} }

var _ CheckRepo = (*CheckSQL)(nil)

const (
	selectChecksSQL = `SELECT job_name, enabled, alert_on_failure, alert_on_miss, grace_seconds, status, last_heartbeat_at, expected_next_at, last_success_at, last_failure_at, consecutive_failures, updated_at FROM check_states`

	selectCheckSQL         = selectChecksSQL + ` WHERE job_name = ?`
	selectEnabledChecksSQL = selectChecksSQL + ` WHERE enabled = 1 ORDER BY job_name`
	selectAllChecksSQL     = selectChecksSQL + ` ORDER BY job_name`

	// New rows start UP with zero failures; existing rows only take the config columns.
	upsertCheckConfigSQL = `
		INSERT INTO check_states (job_name, enabled, alert_on_failure, alert_on_miss, grace_seconds, status, consecutive_failures, updated_at)
		VALUES (?, ?, ?, ?, ?, 'UP', 0, ?)
		ON CONFLICT(job_name) DO UPDATE SET
			enabled=excluded.enabled,
			alert_on_failure=excluded.alert_on_failure,
			alert_on_miss=excluded.alert_on_miss,
			grace_seconds=excluded.grace_seconds,
			updated_at=excluded.updated_at
	`

	setExpectedNextSQL = `UPDATE check_states SET expected_next_at = ?, updated_at = ? WHERE job_name = ?`

	saveCheckSQL = `
		UPDATE check_states SET
			status = ?,
			last_heartbeat_at = ?,
			expected_next_at = ?,
			last_success_at = ?,
			last_failure_at = ?,
			consecutive_failures = ?,
			updated_at = ?
		WHERE job_name = ?
	`

	setCheckStatusSQL      = `UPDATE check_states SET status = ?, updated_at = ? WHERE job_name = ?`
	countChecksByStatusSQL = `SELECT status, COUNT(*) FROM check_states GROUP BY status`
)

// Get returns the check for jobName, or (nil, nil) when none exists yet.
func (r *CheckSQL) Get(ctx context.Context, jobName string) (*models.CheckState, error) {
	s, err := scanCheck(r.db.QueryRowContext(ctx, r.d.Rebind(selectCheckSQL), jobName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select check %q: %w", jobName, err)
	}
	return &s, nil
}

// UpsertConfig creates the check (status UP) or re-syncs its configuration columns.
func (r *CheckSQL) UpsertConfig(ctx context.Context, jobName string, cfg models.CheckConfig, now time.Time) error {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(upsertCheckConfigSQL),
		jobName,
		boolToInt(cfg.Enabled),
		boolToInt(cfg.AlertOnFailure),
		boolToInt(cfg.AlertOnMiss),
		cfg.GraceSeconds,
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("upsert check config %q: %w", jobName, err)
	}
	return nil
}

func (r *CheckSQL) SetExpectedNext(ctx context.Context, jobName string, next *time.Time, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, r.d.Rebind(setExpectedNextSQL), nullTime(next), formatTime(now), jobName); err != nil {
		return fmt.Errorf("set expected next for %q: %w", jobName, err)
	}
	return nil
}

// Save persists the runtime columns of s. Configuration columns are owned by UpsertConfig.
func (r *CheckSQL) Save(ctx context.Context, s models.CheckState) error {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(saveCheckSQL),
		s.Status,
		nullTime(s.LastHeartbeatAt),
		nullTime(s.ExpectedNextAt),
		nullTime(s.LastSuccessAt),
		nullTime(s.LastFailureAt),
		s.ConsecutiveFailures,
		formatTime(s.UpdatedAt),
		s.JobName,
	)
	if err != nil {
		return fmt.Errorf("save check %q: %w", s.JobName, err)
	}
	return nil
}

func (r *CheckSQL) SetStatus(ctx context.Context, jobName, status string, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, r.d.Rebind(setCheckStatusSQL), status, formatTime(now), jobName); err != nil {
		return fmt.Errorf("set status of %q to %s: %w", jobName, status, err)
	}
	return nil
}

func (r *CheckSQL) ListEnabled(ctx context.Context) ([]models.CheckState, error) {
	return r.list(ctx, selectEnabledChecksSQL)
}

func (r *CheckSQL) List(ctx context.Context) ([]models.CheckState, error) {
	return r.list(ctx, selectAllChecksSQL)
}

func (r *CheckSQL) list(ctx context.Context, q string) ([]models.CheckState, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var out []models.CheckState
	for rows.Next() {
		s, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("list checks: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return out, nil
}

func (r *CheckSQL) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.db, countChecksByStatusSQL)
}

func countGrouped(ctx context.Context, db *sql.DB, q string, args ...any) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("count grouped: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("count grouped: %w", err)
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count grouped: %w", err)
	}
	return out, nil
}

func scanCheck(s rowScanner) (models.CheckState, error) {
	var c models.CheckState
	var lastHeartbeat, expectedNext, lastSuccess, lastFailure sql.NullString
	var updatedAt string
	if err := s.Scan(&c.JobName, &c.Enabled, &c.AlertOnFailure, &c.AlertOnMiss, &c.GraceSeconds, &c.Status,
		&lastHeartbeat, &expectedNext, &lastSuccess, &lastFailure, &c.ConsecutiveFailures, &updatedAt); err != nil {
		return c, err
	}

	var err error
	if c.LastHeartbeatAt, err = parseNullTime(lastHeartbeat); err != nil {
		return c, err
	}
	if c.ExpectedNextAt, err = parseNullTime(expectedNext); err != nil {
		return c, err
	}
	if c.LastSuccessAt, err = parseNullTime(lastSuccess); err != nil {
		return c, err
	}
	if c.LastFailureAt, err = parseNullTime(lastFailure); err != nil {
		return c, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return c, err
	}
	return c, nil
}
