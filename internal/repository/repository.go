package repository

import (
	"context"
	"database/sql"
	"time"

	"chief_monitor/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.TelemetryEvent) (models.TelemetryEvent, error)
	List(ctx context.Context, f models.EventFilter) ([]models.TelemetryEvent, error)
	Count(ctx context.Context) (int64, error)
	LatestEventAt(ctx context.Context) (*time.Time, error)
	LatestBySourceAndType(ctx context.Context, sourceType, eventType string) (*models.TelemetryEvent, error)
	LatestForJob(ctx context.Context, jobName string) (*models.TelemetryEvent, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type CheckRepo interface {
	Get(ctx context.Context, jobName string) (*models.CheckState, error)
	UpsertConfig(ctx context.Context, jobName string, cfg models.CheckConfig, now time.Time) error
	SetExpectedNext(ctx context.Context, jobName string, next *time.Time, now time.Time) error
	Save(ctx context.Context, s models.CheckState) error
	SetStatus(ctx context.Context, jobName, status string, now time.Time) error
	ListEnabled(ctx context.Context) ([]models.CheckState, error)
	List(ctx context.Context) ([]models.CheckState, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type AlertRepo interface {
	// Open inserts a into the OPEN set. created is false when an OPEN alert already holds a.DedupeKey.
	Open(ctx context.Context, a models.Alert) (alert models.Alert, created bool, err error)
	CloseOpen(ctx context.Context, jobName, alertType string, now time.Time) (int64, error)
	CloseStaleRecovery(ctx context.Context, openedBefore, now time.Time) (int64, error)
	Get(ctx context.Context, id int64) (*models.Alert, error)
	CloseByID(ctx context.Context, id int64, now time.Time) (bool, error)
	List(ctx context.Context, f models.AlertFilter) ([]models.Alert, error)
	ListOpenForJob(ctx context.Context, jobName string) ([]models.Alert, error)
	CountOpenByType(ctx context.Context) (map[string]int, error)
}

type DeliveryRepo interface {
	Record(ctx context.Context, d models.AlertDelivery) (int64, error)
	ListForAlert(ctx context.Context, alertID int64) ([]models.AlertDelivery, error)
}

// SettingsRepo stores keyed JSON configuration documents.
type SettingsRepo interface {
	Get(ctx context.Context, key string) (*SettingEntry, error)
	Put(ctx context.Context, key string, value []byte, now time.Time) error
}

// SettingEntry is one row of service_config.
type SettingEntry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Repository struct {
	EventRepo    EventRepo
	CheckRepo    CheckRepo
	AlertRepo    AlertRepo
	DeliveryRepo DeliveryRepo
	SettingsRepo SettingsRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB, d Dialect) *Repository {
	return &Repository{
		EventRepo:    NewEventSQL(db, d),
		CheckRepo:    NewCheckSQL(db, d),
		AlertRepo:    NewAlertSQL(db, d),
		DeliveryRepo: NewDeliverySQL(db, d),
		SettingsRepo: NewSettingsSQL(db, d),
		Auth:         NewUserRepository(db, d),
	}
}
