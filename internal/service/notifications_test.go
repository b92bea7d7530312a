package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chief_monitor/internal/models"
	"chief_monitor/internal/notify"
	"chief_monitor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettings struct {
	mu   sync.Mutex
	rows map[string]repository.SettingEntry
}

func (m *memSettings) Get(_ context.Context, key string) (*repository.SettingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memSettings) Put(_ context.Context, key string, value []byte, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]repository.SettingEntry{}
	}
	m.rows[key] = repository.SettingEntry{Key: key, Value: value, UpdatedAt: now}
	return nil
}

type fakeSender struct {
	configured bool
	err        error

	mu   sync.Mutex
	sent []notify.EmailMessage
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, msg notify.EmailMessage) (notify.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return notify.SendResult{}, f.err
	}
	return notify.SendResult{ProviderMessageID: "msg-1", StatusCode: 202}, nil
}

type memDeliveries struct {
	mu  sync.Mutex
	all []models.AlertDelivery
}

func (m *memDeliveries) Record(_ context.Context, d models.AlertDelivery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = append(m.all, d)
	return int64(len(m.all)), nil
}

func (m *memDeliveries) ListForAlert(_ context.Context, id int64) ([]models.AlertDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AlertDelivery
	for _, d := range m.all {
		if d.AlertID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestNotificationService_DefaultSettings(t *testing.T) {
	svc := NewNotificationService(&memSettings{}, nil, nil)

	st, err := svc.GetEmailSettings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Recipients)
	assert.Equal(t, []string{models.AlertFailure, models.AlertMissed, models.AlertRecovery}, st.EnabledAlertTypes)
	assert.False(t, st.ProviderConfigured)
	assert.Nil(t, st.UpdatedAt)
}

func TestNotificationService_SaveEmailSettings(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		in         EmailSettingsInput
		wantErr    error
		wantTo     []string
		wantTypes  []string
	}{
		{
			name:       "normalises recipients",
			configured: true,
			in:         EmailSettingsInput{Recipients: []string{" Ops@Example.com", "ops@example.com", "", "dev@example.com"}, EnabledAlertTypes: []string{"failure", "MISSED"}},
			wantTo:     []string{"ops@example.com", "dev@example.com"},
			wantTypes:  []string{models.AlertFailure, models.AlertMissed},
		},
		{
			name:       "disable everything",
			configured: false,
			in:         EmailSettingsInput{},
			wantTo:     []string{},
			wantTypes:  []string{},
		},
		{
			name:       "bad address",
			configured: true,
			in:         EmailSettingsInput{Recipients: []string{"not-an-address"}},
			wantErr:    ErrInvalidSettings,
		},
		{
			name:       "unknown alert type",
			configured: true,
			in:         EmailSettingsInput{Recipients: []string{"a@example.com"}, EnabledAlertTypes: []string{"PAGE"}},
			wantErr:    ErrInvalidSettings,
		},
		{
			name:       "types without recipients",
			configured: true,
			in:         EmailSettingsInput{EnabledAlertTypes: []string{models.AlertFailure}},
			wantErr:    ErrInvalidSettings,
		},
		{
			name:       "recipients without provider",
			configured: false,
			in:         EmailSettingsInput{Recipients: []string{"a@example.com"}},
			wantErr:    ErrEmailNotConfigured,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &memSettings{}
			svc := NewNotificationService(store, &fakeSender{configured: tc.configured}, nil)

			got, err := svc.SaveEmailSettings(context.Background(), tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, store.rows)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTo, got.Recipients)
			assert.Equal(t, tc.wantTypes, got.EnabledAlertTypes)
			assert.Equal(t, tc.configured, got.ProviderConfigured)
			assert.NotNil(t, got.UpdatedAt)
		})
	}
}

func TestNotificationService_TooManyRecipients(t *testing.T) {
	svc := NewNotificationService(&memSettings{}, &fakeSender{configured: true}, nil)

	in := EmailSettingsInput{}
	for i := 0; i <= models.MaxAlertEmailRecipients; i++ {
		in.Recipients = append(in.Recipients, "user"+string(rune('a'+i%26))+string(rune('a'+i/26))+"@example.com")
	}
	_, err := svc.SaveEmailSettings(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestNotificationService_SendTestEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("provider not configured", func(t *testing.T) {
		svc := NewNotificationService(&memSettings{}, notify.Disabled{}, nil)
		rep, err := svc.SendTestEmail(ctx, "")
		assert.ErrorIs(t, err, ErrEmailNotConfigured)
		assert.Zero(t, rep.Attempted)
	})

	t.Run("no recipients", func(t *testing.T) {
		svc := NewNotificationService(&memSettings{}, &fakeSender{configured: true}, nil)
		rep, err := svc.SendTestEmail(ctx, "")
		assert.ErrorIs(t, err, ErrNoRecipients)
		assert.Zero(t, rep.Attempted)
	})

	t.Run("sent", func(t *testing.T) {
		sender := &fakeSender{configured: true}
		svc := NewNotificationService(&memSettings{}, sender, nil)
		_, err := svc.SaveEmailSettings(ctx, EmailSettingsInput{Recipients: []string{"a@example.com", "b@example.com"}})
		require.NoError(t, err)

		rep, err := svc.SendTestEmail(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, EmailSendReport{Attempted: 2, Sent: 2, Message: rep.Message}, rep)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, sender.sent[0].To)
		assert.Contains(t, sender.sent[0].Text, "Requested by: admin")
	})

	t.Run("provider failure", func(t *testing.T) {
		sender := &fakeSender{configured: true}
		svc := NewNotificationService(&memSettings{}, sender, nil)
		_, err := svc.SaveEmailSettings(ctx, EmailSettingsInput{Recipients: []string{"a@example.com"}})
		require.NoError(t, err)

		sender.err = &notify.SendError{StatusCode: 401, Message: "bad key"}
		rep, err := svc.SendTestEmail(ctx, "")
		require.Error(t, err)
		assert.Equal(t, 1, rep.Attempted)
		assert.Equal(t, 1, rep.Failed)
		assert.Equal(t, 0, rep.Sent)
	})
}

func TestNotificationService_WantsAndDeliver(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{configured: true}
	svc := NewNotificationService(&memSettings{}, sender, nil)

	failure := models.Alert{ID: 7, JobName: "nightly", AlertType: models.AlertFailure, Severity: models.SeverityError, Title: "Job nightly failed"}
	recovery := models.Alert{ID: 8, JobName: "nightly", AlertType: models.AlertRecovery, Title: "Job nightly recovered from failure"}

	assert.False(t, svc.Wants(ctx, failure), "no recipients yet")

	_, err := svc.SaveEmailSettings(ctx, EmailSettingsInput{
		Recipients:        []string{"ops@example.com"},
		EnabledAlertTypes: []string{models.AlertFailure},
	})
	require.NoError(t, err)

	assert.True(t, svc.Wants(ctx, failure))
	assert.False(t, svc.Wants(ctx, recovery))

	d := svc.Deliver(ctx, failure)
	assert.Equal(t, models.DeliverySent, d.Status)
	assert.Equal(t, channelEmail, d.Channel)
	assert.EqualValues(t, 7, d.AlertID)
	require.NotNil(t, d.ResponseCode)
	assert.Equal(t, 202, *d.ResponseCode)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "FAILURE")

	sender.err = &notify.SendError{StatusCode: 500, Message: "down"}
	d = svc.Deliver(ctx, failure)
	assert.Equal(t, models.DeliveryFailed, d.Status)
	require.NotNil(t, d.ResponseCode)
	assert.Equal(t, 500, *d.ResponseCode)
	assert.NotEmpty(t, d.ErrorText)

	sender.err = errors.New("dial tcp: timeout")
	d = svc.Deliver(ctx, failure)
	assert.Equal(t, models.DeliveryFailed, d.Status)
	assert.Nil(t, d.ResponseCode)
}

func TestAlertManager_EmailDeliveryRecorded(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	deliveries := &memDeliveries{}
	sender := &fakeSender{configured: true}

	alerts := NewAlertManager(e.repos.AlertRepo, deliveries, nil)
	notifications := NewNotificationService(&memSettings{}, sender, nil)
	alerts.SetNotifier(notifications)

	_, err := notifications.SaveEmailSettings(ctx, EmailSettingsInput{
		Recipients:        []string{"ops@example.com"},
		EnabledAlertTypes: []string{models.AlertMissed},
	})
	require.NoError(t, err)

	missed, created, err := alerts.OpenAlert(ctx, OpenAlertParams{
		JobName: "hourly", AlertType: models.AlertMissed, Severity: models.SeverityWarn,
		DedupeKey: models.DedupeKey("hourly", models.AlertMissed), Title: "Job hourly missed expected heartbeat",
	})
	require.NoError(t, err)
	require.True(t, created)

	failed, created, err := alerts.OpenAlert(ctx, OpenAlertParams{
		JobName: "hourly", AlertType: models.AlertFailure, Severity: models.SeverityError,
		DedupeKey: models.DedupeKey("hourly", models.AlertFailure), Title: "Job hourly failed",
	})
	require.NoError(t, err)
	require.True(t, created)

	alerts.Wait()

	got, err := deliveries.ListForAlert(ctx, missed.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, channelEmail, got[0].Channel)
	assert.Equal(t, models.DeliverySent, got[0].Status)

	got, err = deliveries.ListForAlert(ctx, failed.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, channelWebhook, got[0].Channel)
	assert.Equal(t, models.DeliveryStub, got[0].Status)
}
