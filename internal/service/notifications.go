package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/models"
	"chief_monitor/internal/notify"
	"chief_monitor/internal/repository"
)

const (
	emailSettingsKey = "alerts.email"
	subjectPrefix    = "[chief-monitor]"
)

var notifiableAlertTypes = []string{models.AlertFailure, models.AlertMissed, models.AlertRecovery}

// EmailSettingsInput is the operator-editable part of EmailAlertSettings.
type EmailSettingsInput struct {
	Recipients        []string `json:"recipients"`
	EnabledAlertTypes []string `json:"enabledAlertTypes"`
}

// EmailSendReport summarises a test send.
type EmailSendReport struct {
	Attempted int    `json:"attempted"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
}

// NotificationService keeps the email settings and delivers alert emails.
// It is the AlertNotifier installed on the AlertManager.
type NotificationService struct {
	settings repository.SettingsRepo
	sender   notify.EmailSender
	log      *logger.Logger
	now      func() time.Time
}

func NewNotificationService(settings repository.SettingsRepo, sender notify.EmailSender, log *logger.Logger) *NotificationService {
	if sender == nil {
		sender = notify.Disabled{}
	}
	return &NotificationService{settings: settings, sender: sender, log: orNop(log), now: time.Now}
}

// GetEmailSettings returns the stored settings, or the defaults when none were saved.
func (s *NotificationService) GetEmailSettings(ctx context.Context) (models.EmailAlertSettings, error) {
	out := models.EmailAlertSettings{
		Recipients:        []string{},
		EnabledAlertTypes: slices.Clone(notifiableAlertTypes),
	}
	entry, err := s.settings.Get(ctx, emailSettingsKey)
	if err != nil {
		return out, fmt.Errorf("load email settings: %w", err)
	}
	if entry != nil {
		var in EmailSettingsInput
		if err := json.Unmarshal(entry.Value, &in); err != nil {
			s.log.Warnw("email_settings_corrupt", "err", err)
		} else {
			if in.Recipients != nil {
				out.Recipients = in.Recipients
			}
			if in.EnabledAlertTypes != nil {
				out.EnabledAlertTypes = in.EnabledAlertTypes
			}
			at := entry.UpdatedAt.UTC()
			out.UpdatedAt = &at
		}
	}
	out.ProviderConfigured = s.sender.Configured()
	return out, nil
}

// SaveEmailSettings validates and stores in. Recipients are lower-cased and deduplicated.
func (s *NotificationService) SaveEmailSettings(ctx context.Context, in EmailSettingsInput) (models.EmailAlertSettings, error) {
	recipients, err := normalizeRecipients(in.Recipients)
	if err != nil {
		return models.EmailAlertSettings{}, err
	}
	types, err := normalizeAlertTypes(in.EnabledAlertTypes)
	if err != nil {
		return models.EmailAlertSettings{}, err
	}
	if len(types) > 0 && len(recipients) == 0 {
		return models.EmailAlertSettings{}, fmt.Errorf("%w: at least one recipient is required when alert types are enabled", ErrInvalidSettings)
	}
	if len(recipients) > 0 && !s.sender.Configured() {
		return models.EmailAlertSettings{}, ErrEmailNotConfigured
	}

	raw, err := json.Marshal(EmailSettingsInput{Recipients: recipients, EnabledAlertTypes: types})
	if err != nil {
		return models.EmailAlertSettings{}, err
	}
	if err := s.settings.Put(ctx, emailSettingsKey, raw, s.now().UTC()); err != nil {
		return models.EmailAlertSettings{}, fmt.Errorf("save email settings: %w", err)
	}
	s.log.Infow("email_settings_saved", "recipients", len(recipients), "types", types)
	return s.GetEmailSettings(ctx)
}

func normalizeRecipients(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, r := range in {
		addr := strings.ToLower(strings.TrimSpace(r))
		if addr == "" {
			continue
		}
		parsed, err := mail.ParseAddress(addr)
		if err != nil || parsed.Address != addr {
			return nil, fmt.Errorf("%w: %q is not an email address", ErrInvalidSettings, r)
		}
		if !slices.Contains(out, addr) {
			out = append(out, addr)
		}
	}
	if len(out) > models.MaxAlertEmailRecipients {
		return nil, fmt.Errorf("%w: at most %d recipients", ErrInvalidSettings, models.MaxAlertEmailRecipients)
	}
	return out, nil
}

func normalizeAlertTypes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if !slices.Contains(notifiableAlertTypes, t) {
			return nil, fmt.Errorf("%w: unknown alert type %q", ErrInvalidSettings, t)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Wants reports whether a newly opened alert should be emailed.
func (s *NotificationService) Wants(ctx context.Context, a models.Alert) bool {
	if !s.sender.Configured() {
		return false
	}
	st, err := s.GetEmailSettings(ctx)
	if err != nil {
		s.log.Warnw("email_settings_unavailable", "alert_id", a.ID, "err", err)
		return false
	}
	return len(st.Recipients) > 0 && st.Enables(a.AlertType)
}

// Deliver sends one email for a to every configured recipient and describes the attempt.
func (s *NotificationService) Deliver(ctx context.Context, a models.Alert) models.AlertDelivery {
	d := models.AlertDelivery{AlertID: a.ID, Channel: channelEmail, AttemptedAt: s.now().UTC()}

	st, err := s.GetEmailSettings(ctx)
	if err == nil && len(st.Recipients) == 0 {
		err = ErrNoRecipients
	}
	if err == nil {
		var res notify.SendResult
		res, err = s.sender.Send(ctx, alertMessage(st.Recipients, a))
		if err == nil {
			d.Status = models.DeliverySent
			code := res.StatusCode
			d.ResponseCode = &code
			s.log.Infow("alert_email_sent", "alert_id", a.ID, "recipients", len(st.Recipients), "message_id", res.ProviderMessageID)
			return d
		}
	}

	d.Status = models.DeliveryFailed
	d.ResponseCode = notify.ResponseCode(err)
	d.ErrorText = err.Error()
	s.log.Warnw("alert_email_failed", "alert_id", a.ID, "err", err)
	return d
}

// SendTestEmail sends a test message to the configured recipients. Configuration
// problems return ErrEmailNotConfigured or ErrNoRecipients with an empty report;
// provider failures return the error together with the failed counts.
func (s *NotificationService) SendTestEmail(ctx context.Context, requestedBy string) (EmailSendReport, error) {
	st, err := s.GetEmailSettings(ctx)
	if err != nil {
		return EmailSendReport{}, err
	}
	if !st.ProviderConfigured {
		return EmailSendReport{Message: "Email provider is not configured."}, ErrEmailNotConfigured
	}
	n := len(st.Recipients)
	if n == 0 {
		return EmailSendReport{Message: "No alert email recipients configured."}, ErrNoRecipients
	}

	text := "This is a test alert email from chief monitor.\nSent at: " + s.now().UTC().Format(time.RFC3339)
	if requestedBy != "" {
		text += "\nRequested by: " + requestedBy
	}
	res, err := s.sender.Send(ctx, notify.EmailMessage{
		To:      st.Recipients,
		Subject: subjectPrefix + " Test alert email",
		Text:    text,
	})
	if err != nil {
		s.log.Warnw("test_email_failed", "recipients", n, "err", err)
		return EmailSendReport{Attempted: n, Failed: n, Message: err.Error()}, err
	}
	s.log.Infow("test_email_sent", "recipients", n, "message_id", res.ProviderMessageID)
	return EmailSendReport{Attempted: n, Sent: n, Message: fmt.Sprintf("Test email sent to %d recipient(s).", n)}, nil
}

func alertMessage(to []string, a models.Alert) notify.EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", a.Title)
	fmt.Fprintf(&b, "Job: %s\nType: %s\nSeverity: %s\nOpened at: %s\n",
		a.JobName, a.AlertType, a.Severity, a.OpenedAt.UTC().Format(time.RFC3339))
	if len(a.Details) > 0 {
		if raw, err := json.MarshalIndent(a.Details, "", "  "); err == nil {
			fmt.Fprintf(&b, "\nDetails:\n%s\n", raw)
		}
	}
	return notify.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s %s: %s", subjectPrefix, a.AlertType, a.Title),
		Text:    b.String(),
	}
}
