package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chief_monitor/internal/models"

	"github.com/google/uuid"
)

type EventSQL struct {
	db *sql.DB
	d  Dialect
}

func NewEventSQL(db *sql.DB, d Dialect) *EventSQL { return &EventSQL{db: db, d: d} }

var _ EventRepo = (*EventSQL)(nil)

const (
	insertEventSQL = `INSERT INTO telemetry_events (id, received_at, event_at, source_type, event_type, level, message, job_name, script_path, run_id, scheduled_for, success, return_code, duration_ms, metadata) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectEventsSQL = `SELECT id, received_at, event_at, source_type, event_type, level, message, job_name, script_path, run_id, scheduled_for, success, return_code, duration_ms, metadata FROM telemetry_events`

	eventOrderSQL = ` ORDER BY event_at DESC, received_at DESC`

	countEventsSQL        = `SELECT COUNT(*) FROM telemetry_events`
	latestEventAtSQL      = `SELECT MAX(event_at) FROM telemetry_events`
	latestBySourceTypeSQL = selectEventsSQL + ` WHERE source_type = ? AND event_type = ?` + eventOrderSQL + ` LIMIT 1`
	latestForJobSQL       = selectEventsSQL + ` WHERE job_name = ?` + eventOrderSQL + ` LIMIT 1`
	deleteEventsBeforeSQL = `DELETE FROM telemetry_events WHERE event_at < ?`
)

// Append inserts e. ID and ReceivedAt are filled in when empty; EventAt defaults to ReceivedAt.
func (r *EventSQL) Append(ctx context.Context, e models.TelemetryEvent) (models.TelemetryEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}
	e.ReceivedAt = e.ReceivedAt.UTC()
	if e.EventAt.IsZero() {
		e.EventAt = e.ReceivedAt
	}
	e.EventAt = e.EventAt.UTC()
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}

	meta, err := marshalRecord(e.Metadata)
	if err != nil {
		return models.TelemetryEvent{}, fmt.Errorf("marshal metadata of event %s: %w", e.ID, err)
	}

	var success, returnCode, duration any
	if e.Success != nil {
		success = boolToInt(*e.Success)
	}
	if e.ReturnCode != nil {
		returnCode = *e.ReturnCode
	}
	if e.DurationMs != nil {
		duration = *e.DurationMs
	}

	_, err = r.db.ExecContext(ctx, r.d.Rebind(insertEventSQL),
		e.ID,
		formatTime(e.ReceivedAt),
		formatTime(e.EventAt),
		e.SourceType,
		e.EventType,
		e.Level,
		e.Message,
		nullString(e.JobName),
		nullString(e.ScriptPath),
		nullString(e.RunID),
		nullString(e.ScheduledFor),
		success,
		returnCode,
		duration,
		meta,
	)
	if err != nil {
		return models.TelemetryEvent{}, fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	return e, nil
}

// List returns events matching f, newest first.
func (r *EventSQL) List(ctx context.Context, f models.EventFilter) ([]models.TelemetryEvent, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		conds = append(conds, cond)
		args = append(args, v)
	}
	if f.JobName != "" {
		add("job_name = ?", f.JobName)
	}
	if f.ScriptPath != "" {
		add("script_path = ?", f.ScriptPath)
	}
	if f.Level != "" {
		add("level = ?", f.Level)
	}
	if f.EventType != "" {
		add("event_type = ?", f.EventType)
	}
	if !f.From.IsZero() {
		add("event_at >= ?", formatTime(f.From))
	}
	if !f.To.IsZero() {
		add("event_at <= ?", formatTime(f.To))
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += eventOrderSQL + " LIMIT ? OFFSET ?"
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]models.TelemetryEvent, 0, limit)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (r *EventSQL) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, countEventsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// LatestEventAt returns the newest event_at, or nil when the log is empty.
func (r *EventSQL) LatestEventAt(ctx context.Context) (*time.Time, error) {
	var ts sql.NullString
	if err := r.db.QueryRowContext(ctx, latestEventAtSQL).Scan(&ts); err != nil {
		return nil, fmt.Errorf("latest event time: %w", err)
	}
	return parseNullTime(ts)
}

func (r *EventSQL) LatestBySourceAndType(ctx context.Context, sourceType, eventType string) (*models.TelemetryEvent, error) {
	return r.latest(ctx, latestBySourceTypeSQL, sourceType, eventType)
}

func (r *EventSQL) LatestForJob(ctx context.Context, jobName string) (*models.TelemetryEvent, error) {
	return r.latest(ctx, latestForJobSQL, jobName)
}

func (r *EventSQL) latest(ctx context.Context, q string, args ...any) (*models.TelemetryEvent, error) {
	ev, err := scanEvent(r.db.QueryRowContext(ctx, r.d.Rebind(q), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

// DeleteBefore removes events whose event_at is strictly older than cutoff.
func (r *EventSQL) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(deleteEventsBeforeSQL), formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (models.TelemetryEvent, error) {
	var ev models.TelemetryEvent
	var receivedAt, eventAt, meta string
	var jobName, scriptPath, runID, scheduledFor sql.NullString
	var success sql.NullBool
	var returnCode, duration sql.NullInt64
	if err := s.Scan(&ev.ID, &receivedAt, &eventAt, &ev.SourceType, &ev.EventType, &ev.Level, &ev.Message,
		&jobName, &scriptPath, &runID, &scheduledFor, &success, &returnCode, &duration, &meta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ev, err
		}
		return ev, fmt.Errorf("scan event: %w", err)
	}

	var err error
	if ev.ReceivedAt, err = parseTime(receivedAt); err != nil {
		return ev, err
	}
	if ev.EventAt, err = parseTime(eventAt); err != nil {
		return ev, err
	}
	ev.JobName = jobName.String
	ev.ScriptPath = scriptPath.String
	ev.RunID = runID.String
	ev.ScheduledFor = scheduledFor.String
	if success.Valid {
		v := success.Bool
		ev.Success = &v
	}
	if returnCode.Valid {
		v := int(returnCode.Int64)
		ev.ReturnCode = &v
	}
	if duration.Valid {
		v := duration.Int64
		ev.DurationMs = &v
	}
	ev.Metadata = unmarshalRecord(meta)
	return ev, nil
}
