package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chief_monitor/internal/models"
)

type AlertSQL struct {
	db *sql.DB
	d  Dialect
}

func NewAlertSQL(db *sql.DB, d Dialect) *AlertSQL { return &AlertSQL{db: db, d: d} }

var _ AlertRepo = (*AlertSQL)(nil)

const (
	// The partial unique index on dedupe_key turns a duplicate OPEN insert into a no-op.
	insertAlertSQL = `INSERT INTO alerts (job_name, alert_type, severity, status, opened_at, dedupe_key, title, details) VALUES (?, ?, ?, 'OPEN', ?, ?, ?, ?) ON CONFLICT DO NOTHING RETURNING id`

	selectAlertsSQL = `SELECT id, job_name, alert_type, severity, status, opened_at, closed_at, dedupe_key, title, details FROM alerts`
	alertOrderSQL   = ` ORDER BY opened_at DESC, id DESC`

	selectAlertSQL         = selectAlertsSQL + ` WHERE id = ?`
	selectOpenForJobSQL    = selectAlertsSQL + ` WHERE job_name = ? AND status = 'OPEN'` + alertOrderSQL
	closeOpenAlertsSQL     = `UPDATE alerts SET status = 'CLOSED', closed_at = ? WHERE job_name = ? AND alert_type = ? AND status = 'OPEN'`
	closeStaleRecoverySQL  = `UPDATE alerts SET status = 'CLOSED', closed_at = ? WHERE alert_type = 'RECOVERY' AND status = 'OPEN' AND opened_at < ?`
	closeAlertByIDSQL      = `UPDATE alerts SET status = 'CLOSED', closed_at = ? WHERE id = ? AND status = 'OPEN'`
	countOpenAlertsTypeSQL = `SELECT alert_type, COUNT(*) FROM alerts WHERE status = 'OPEN' GROUP BY alert_type`
)

// Open inserts a as an OPEN alert and returns it with its new id.
// When another OPEN alert already holds a.DedupeKey nothing is written and created is false.
func (r *AlertSQL) Open(ctx context.Context, a models.Alert) (models.Alert, bool, error) {
	details, err := marshalRecord(a.Details)
	if err != nil {
		return models.Alert{}, false, fmt.Errorf("marshal details of %s: %w", a.DedupeKey, err)
	}
	if a.OpenedAt.IsZero() {
		a.OpenedAt = time.Now()
	}
	a.OpenedAt = a.OpenedAt.UTC()

	err = r.db.QueryRowContext(ctx, r.d.Rebind(insertAlertSQL),
		a.JobName, a.AlertType, a.Severity, formatTime(a.OpenedAt), a.DedupeKey, a.Title, details,
	).Scan(&a.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alert{}, false, nil
		}
		return models.Alert{}, false, fmt.Errorf("insert alert %s: %w", a.DedupeKey, err)
	}
	a.Status = models.AlertOpen
	a.ClosedAt = nil
	if a.Details == nil {
		a.Details = map[string]any{}
	}
	return a, true, nil
}

// CloseOpen closes every OPEN alert of alertType for jobName and returns how many were closed.
func (r *AlertSQL) CloseOpen(ctx context.Context, jobName, alertType string, now time.Time) (int64, error) {
	return r.exec(ctx, closeOpenAlertsSQL, formatTime(now), jobName, alertType)
}

// CloseStaleRecovery closes OPEN RECOVERY alerts opened strictly before openedBefore.
func (r *AlertSQL) CloseStaleRecovery(ctx context.Context, openedBefore, now time.Time) (int64, error) {
	return r.exec(ctx, closeStaleRecoverySQL, formatTime(now), formatTime(openedBefore))
}

// CloseByID closes alert id if it is OPEN; false means it was already closed or absent.
func (r *AlertSQL) CloseByID(ctx context.Context, id int64, now time.Time) (bool, error) {
	n, err := r.exec(ctx, closeAlertByIDSQL, formatTime(now), id)
	return n > 0, err
}

func (r *AlertSQL) exec(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("update alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Get returns alert id, or (nil, nil) when it does not exist.
func (r *AlertSQL) Get(ctx context.Context, id int64) (*models.Alert, error) {
	a, err := scanAlert(r.db.QueryRowContext(ctx, r.d.Rebind(selectAlertSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select alert %d: %w", id, err)
	}
	return &a, nil
}

// List returns alerts matching f, newest first.
func (r *AlertSQL) List(ctx context.Context, f models.AlertFilter) ([]models.Alert, error) {
	var (
		conds []string
		args  []any
	)
	for _, c := range []struct {
		col string
		val string
	}{
		{"job_name", f.JobName},
		{"status", f.Status},
		{"alert_type", f.AlertType},
		{"severity", f.Severity},
	} {
		if c.val != "" {
			conds = append(conds, c.col+" = ?")
			args = append(args, c.val)
		}
	}

	q := selectAlertsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += alertOrderSQL + " LIMIT ? OFFSET ?"
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	return r.query(ctx, q, args...)
}

func (r *AlertSQL) ListOpenForJob(ctx context.Context, jobName string) ([]models.Alert, error) {
	return r.query(ctx, selectOpenForJobSQL, jobName)
}

func (r *AlertSQL) query(ctx context.Context, q string, args ...any) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return out, nil
}

func (r *AlertSQL) CountOpenByType(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.db, countOpenAlertsTypeSQL)
}

func scanAlert(s rowScanner) (models.Alert, error) {
	var a models.Alert
	var openedAt, details string
	var closedAt sql.NullString
	if err := s.Scan(&a.ID, &a.JobName, &a.AlertType, &a.Severity, &a.Status, &openedAt, &closedAt,
		&a.DedupeKey, &a.Title, &details); err != nil {
		return a, err
	}
	var err error
	if a.OpenedAt, err = parseTime(openedAt); err != nil {
		return a, err
	}
	if a.ClosedAt, err = parseNullTime(closedAt); err != nil {
		return a, err
	}
	a.Details = unmarshalRecord(details)
	return a, nil
}
