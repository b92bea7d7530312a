package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/models"
	"chief_monitor/internal/repository"
)

const (
	DefaultRecoveryTTL = 900 * time.Second

	channelWebhook  = "webhook"
	channelEmail    = "email"
	stubDeliveryMsg = "webhook integration not configured"

	deliveryTimeout = 30 * time.Second
)

// AlertNotifier announces newly opened alerts. Wants is asked synchronously;
// Deliver runs in the background and its result is recorded as an AlertDelivery.
type AlertNotifier interface {
	Wants(ctx context.Context, a models.Alert) bool
	Deliver(ctx context.Context, a models.Alert) models.AlertDelivery
}

// OpenAlertParams describes an alert to open.
type OpenAlertParams struct {
	JobName   string
	AlertType string
	Severity  string
	DedupeKey string
	Title     string
	Details   map[string]any
}

// CloseAlertResult is the outcome of an operator close.
type CloseAlertResult struct {
	Found   bool          `json:"found"`
	Updated bool          `json:"updated"`
	Reason  string        `json:"reason,omitempty"`
	Alert   *models.Alert `json:"alert,omitempty"`
}

// AlertManager owns the alert lifecycle: open with dedupe, close, recovery expiry.
type AlertManager struct {
	alerts     repository.AlertRepo
	deliveries repository.DeliveryRepo
	notifier   AlertNotifier
	log        *logger.Logger
	now        func() time.Time

	wg sync.WaitGroup
}

func NewAlertManager(alerts repository.AlertRepo, deliveries repository.DeliveryRepo, log *logger.Logger) *AlertManager {
	return &AlertManager{
		alerts:     alerts,
		deliveries: deliveries,
		log:        orNop(log),
		now:        time.Now,
	}
}

// SetNotifier installs the notifier consulted for every newly opened alert.
func (m *AlertManager) SetNotifier(n AlertNotifier) { m.notifier = n }

// OpenAlert opens an alert unless one is already OPEN under p.DedupeKey.
// created reports whether a new row was written.
func (m *AlertManager) OpenAlert(ctx context.Context, p OpenAlertParams) (models.Alert, bool, error) {
	a, created, err := m.alerts.Open(ctx, models.Alert{
		JobName:   p.JobName,
		AlertType: p.AlertType,
		Severity:  p.Severity,
		OpenedAt:  m.now().UTC(),
		DedupeKey: p.DedupeKey,
		Title:     p.Title,
		Details:   p.Details,
	})
	if err != nil {
		return models.Alert{}, false, fmt.Errorf("open %s alert for %q: %w", p.AlertType, p.JobName, err)
	}
	if !created {
		return models.Alert{}, false, nil
	}
	m.log.Infow("alert_opened", "alert_id", a.ID, "job", a.JobName, "type", a.AlertType, "dedupe_key", a.DedupeKey)
	m.announce(ctx, a)
	return a, true, nil
}

func (m *AlertManager) announce(ctx context.Context, a models.Alert) {
	if m.notifier == nil || !m.notifier.Wants(ctx, a) {
		m.record(ctx, models.AlertDelivery{
			AlertID:     a.ID,
			Channel:     channelWebhook,
			AttemptedAt: m.now().UTC(),
			Status:      models.DeliveryStub,
			ErrorText:   stubDeliveryMsg,
		})
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		m.record(dctx, m.notifier.Deliver(dctx, a))
	}()
}

func (m *AlertManager) record(ctx context.Context, d models.AlertDelivery) {
	if _, err := m.deliveries.Record(ctx, d); err != nil {
		m.log.Warnw("alert_delivery_record_failed", "alert_id", d.AlertID, "channel", d.Channel, "err", err)
	}
}

// Wait blocks until background notification deliveries have finished.
func (m *AlertManager) Wait() { m.wg.Wait() }

// CloseOpenAlerts closes every OPEN alert of alertType for jobName and returns the count.
func (m *AlertManager) CloseOpenAlerts(ctx context.Context, jobName, alertType string) (int64, error) {
	n, err := m.alerts.CloseOpen(ctx, jobName, alertType, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("close %s alerts for %q: %w", alertType, jobName, err)
	}
	if n > 0 {
		m.log.Infow("alerts_closed", "job", jobName, "type", alertType, "count", n)
	}
	return n, nil
}

// CloseStaleRecoveryAlerts closes OPEN RECOVERY alerts older than ttl (900s when ttl <= 0).
func (m *AlertManager) CloseStaleRecoveryAlerts(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = DefaultRecoveryTTL
	}
	now := m.now().UTC()
	n, err := m.alerts.CloseStaleRecovery(ctx, now.Add(-ttl), now)
	if err != nil {
		return 0, fmt.Errorf("close stale recovery alerts: %w", err)
	}
	if n > 0 {
		m.log.Infow("recovery_alerts_expired", "count", n, "ttl", ttl)
	}
	return n, nil
}

// CloseAlertByID is the operator close path. A missing alert yields ErrAlertNotFound;
// an already closed alert is reported with Updated=false and no error.
func (m *AlertManager) CloseAlertByID(ctx context.Context, id int64, reason string) (CloseAlertResult, error) {
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = DefaultCloseReason
	}
	a, err := m.alerts.Get(ctx, id)
	if err != nil {
		return CloseAlertResult{}, err
	}
	if a == nil {
		return CloseAlertResult{}, ErrAlertNotFound
	}
	if a.Status == models.AlertClosed {
		return CloseAlertResult{Found: true, Reason: reason, Alert: a}, nil
	}

	updated, err := m.alerts.CloseByID(ctx, id, m.now().UTC())
	if err != nil {
		return CloseAlertResult{}, fmt.Errorf("close alert %d: %w", id, err)
	}
	if updated {
		m.log.Infow("alert_closed_manually", "alert_id", id, "job", a.JobName, "type", a.AlertType, "reason", reason)
	}
	if fresh, err := m.alerts.Get(ctx, id); err == nil && fresh != nil {
		a = fresh
	}
	return CloseAlertResult{Found: true, Updated: updated, Reason: reason, Alert: a}, nil
}

func (m *AlertManager) ListAlerts(ctx context.Context, f models.AlertFilter) ([]models.Alert, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	return m.alerts.List(ctx, f)
}

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log
}
