package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// InitDB opens the store for driver ("sqlite" or "postgres") and ensures tables exist.
func InitDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		return initSQLite(dsn)
	case DriverPostgres:
		return initPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func initSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}

	return finish(db, DriverSQLite)
}

func initPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return finish(db, DriverPostgres)
}

func finish(db *sql.DB, driver string) (*sql.DB, error) {
	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := EnsureSchema(db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Timestamps are stored as fixed-width UTC text so they order lexically on both drivers.
const schemaTelemetryEvents = `
CREATE TABLE IF NOT EXISTS telemetry_events (
    id TEXT PRIMARY KEY,
    received_at TEXT NOT NULL,
    event_at TEXT NOT NULL,
    source_type TEXT NOT NULL,
    event_type TEXT NOT NULL,
    level TEXT NOT NULL,
    message TEXT NOT NULL,
    job_name TEXT,
    script_path TEXT,
    run_id TEXT,
    scheduled_for TEXT,
    success INTEGER,
    return_code INTEGER,
    duration_ms BIGINT,
    metadata TEXT NOT NULL DEFAULT '{}'
);
`

const schemaCheckStates = `
CREATE TABLE IF NOT EXISTS check_states (
    job_name TEXT PRIMARY KEY,
    enabled INTEGER NOT NULL DEFAULT 1,
    alert_on_failure INTEGER NOT NULL DEFAULT 1,
    alert_on_miss INTEGER NOT NULL DEFAULT 1,
    grace_seconds INTEGER NOT NULL DEFAULT 120,
    status TEXT NOT NULL DEFAULT 'UP',
    last_heartbeat_at TEXT,
    expected_next_at TEXT,
    last_success_at TEXT,
    last_failure_at TEXT,
    consecutive_failures INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    id {{ID}},
    job_name TEXT NOT NULL,
    alert_type TEXT NOT NULL,
    severity TEXT NOT NULL,
    status TEXT NOT NULL,
    opened_at TEXT NOT NULL,
    closed_at TEXT,
    dedupe_key TEXT NOT NULL,
    title TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '{}'
);
`

const schemaAlertDeliveries = `
CREATE TABLE IF NOT EXISTS alert_deliveries (
    id {{ID}},
    alert_id BIGINT NOT NULL REFERENCES alerts(id),
    channel TEXT NOT NULL,
    attempted_at TEXT NOT NULL,
    status TEXT NOT NULL,
    response_code INTEGER,
    error_text TEXT
);
`

const schemaServiceConfig = `
CREATE TABLE IF NOT EXISTS service_config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id {{ID}},
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_event_at ON telemetry_events(event_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_job_event_at ON telemetry_events(job_name, event_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_source_type ON telemetry_events(source_type, event_type, event_at)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_job_status ON alerts(job_name, alert_type, status)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_opened_at ON alerts(opened_at)`,
	// at most one OPEN alert per dedupe key
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_alerts_open_dedupe ON alerts(dedupe_key) WHERE status = 'OPEN'`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_alert ON alert_deliveries(alert_id)`,
}

// Statements returns the schema DDL for driver in apply order.
func Statements(driver string) []string {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}
	stmts := make([]string, 0, 6+len(schemaIndexes))
	for _, s := range []string{
		schemaTelemetryEvents,
		schemaCheckStates,
		schemaAlerts,
		schemaAlertDeliveries,
		schemaServiceConfig,
		schemaUsers,
	} {
		stmts = append(stmts, strings.ReplaceAll(s, "{{ID}}", idColumn))
	}
	return append(stmts, schemaIndexes...)
}

// EnsureSchema applies Statements(driver) inside a single transaction.
func EnsureSchema(db *sql.DB, driver string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range Statements(driver) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
