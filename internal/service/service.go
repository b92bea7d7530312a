package service

import (
	"context"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/models"
	"chief_monitor/internal/notify"
	"chief_monitor/internal/repository"
)

type Authorization interface {
	Enabled() bool
	SignUp(ctx context.Context, username, password string) (int, error)
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Ingest accepts telemetry from producers.
type Ingest interface {
	IngestEvents(ctx context.Context, raw []any) (IngestResult, error)
}

// EventLog exposes append-only telemetry with filtering access.
type EventLog interface {
	ListEvents(ctx context.Context, f models.EventFilter) ([]models.TelemetryEvent, error)
}

// Alerts exposes alert listings and the operator close path.
type Alerts interface {
	ListAlerts(ctx context.Context, f models.AlertFilter) ([]models.Alert, error)
	CloseAlertByID(ctx context.Context, id int64, reason string) (CloseAlertResult, error)
}

// Status exposes read-only rollups (summary, per-job status and detail).
type Status interface {
	Summary(ctx context.Context) (models.Summary, error)
	Jobs(ctx context.Context) ([]models.JobStatus, error)
	JobDetail(ctx context.Context, jobName string) (models.JobDetail, error)
}

// Notifications manages email alert settings.
type Notifications interface {
	GetEmailSettings(ctx context.Context) (models.EmailAlertSettings, error)
	SaveEmailSettings(ctx context.Context, in EmailSettingsInput) (models.EmailAlertSettings, error)
	SendTestEmail(ctx context.Context, requestedBy string) (EmailSendReport, error)
}

// Sweeps are the periodic maintenance passes. Tests call them directly.
type Sweeps interface {
	EvaluateChecks(ctx context.Context) (EvaluationResult, error)
	PruneTelemetry(ctx context.Context) (int64, error)
}

// Options carries process configuration into the engine.
type Options struct {
	RetentionDays int
	RecoveryTTL   time.Duration
	AuthSecret    string
	TokenTTL      time.Duration
	Sender        notify.EmailSender
	Logger        *logger.Logger
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Ingest
	EventLog
	Alerts
	Status
	Notifications
	Sweeps
	Authorization

	alerts    *AlertManager
	scheduler *Scheduler
	log       *logger.Logger
}

type sweeps struct {
	*Evaluator
	*Pruner
}

// NewService wires the repository layer into concrete services. Tracker and Evaluator
// share one set of job locks.
func NewService(repos *repository.Repository, opts Options) *Service {
	log := orNop(opts.Logger)
	locks := newJobLocks()

	alerts := NewAlertManager(repos.AlertRepo, repos.DeliveryRepo, log)
	notifications := NewNotificationService(repos.SettingsRepo, opts.Sender, log)
	alerts.SetNotifier(notifications)

	tracker := NewTracker(repos.CheckRepo, alerts, locks, log)

	return &Service{
		Ingest:        NewIngestService(repos.EventRepo, tracker, log),
		EventLog:      NewEventLogService(repos.EventRepo),
		Alerts:        alerts,
		Status:        NewStatusService(repos.EventRepo, repos.CheckRepo, repos.AlertRepo),
		Notifications: notifications,
		Sweeps: sweeps{
			Evaluator: NewEvaluator(repos.CheckRepo, alerts, locks, opts.RecoveryTTL, log),
			Pruner:    NewPruner(repos.EventRepo, opts.RetentionDays, log),
		},
		Authorization: NewAuthService(repos.Auth, opts.AuthSecret, opts.TokenTTL),

		alerts:    alerts,
		scheduler: NewScheduler(log),
		log:       log,
	}
}

// StartSweeps runs the evaluator and pruner on their intervals until ctx is canceled.
func (s *Service) StartSweeps(ctx context.Context, evaluatorEvery, retentionEvery time.Duration) {
	s.scheduler.Every(ctx, "evaluator", evaluatorEvery, func(ctx context.Context) error {
		res, err := s.EvaluateChecks(ctx)
		if res.OpenedMissed > 0 {
			s.log.Infow("evaluator_sweep", "late", res.Late, "down", res.Down, "opened_missed", res.OpenedMissed)
		}
		return err
	})
	s.scheduler.Every(ctx, "retention", retentionEvery, func(ctx context.Context) error {
		_, err := s.PruneTelemetry(ctx)
		return err
	})
}

// Wait blocks until the sweep loops have stopped and pending alert emails are recorded.
// Cancel the context passed to StartSweeps first.
func (s *Service) Wait() {
	s.scheduler.Wait()
	s.alerts.Wait()
}
