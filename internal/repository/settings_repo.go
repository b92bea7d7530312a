package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SettingsSQL struct {
	db *sql.DB
	d  Dialect
}

func NewSettingsSQL(db *sql.DB, d Dialect) *SettingsSQL { return &SettingsSQL{db: db, d: d} }

var _ SettingsRepo = (*SettingsSQL)(nil)

const (
	selectSettingSQL = `SELECT key, value, updated_at FROM service_config WHERE key = ?`

	upsertSettingSQL = `
		INSERT INTO service_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`
)

// Get returns the entry stored under key, or (nil, nil) when absent.
func (r *SettingsSQL) Get(ctx context.Context, key string) (*SettingEntry, error) {
	var (
		e         SettingEntry
		value     string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, r.d.Rebind(selectSettingSQL), key).Scan(&e.Key, &value, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select setting %q: %w", key, err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	e.Value = []byte(value)
	return &e, nil
}

func (r *SettingsSQL) Put(ctx context.Context, key string, value []byte, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, r.d.Rebind(upsertSettingSQL), key, string(value), formatTime(now)); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}
