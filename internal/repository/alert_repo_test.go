package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"chief_monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var alertColumns = []string{"id", "job_name", "alert_type", "severity", "status", "opened_at", "closed_at", "dedupe_key", "title", "details"}

func TestAlertSQL_Open(t *testing.T) {
	opened := time.Date(2025, 2, 2, 2, 2, 2, 0, time.UTC)
	in := models.Alert{
		JobName:   "nightly",
		AlertType: models.AlertFailure,
		Severity:  models.SeverityError,
		OpenedAt:  opened,
		DedupeKey: "nightly:FAILURE",
		Title:     "Job failed: nightly",
		Details:   map[string]any{"runId": "r1"},
	}

	tests := []struct {
		name        string
		mockExpect  func(sqlmock.Sqlmock)
		wantCreated bool
		wantID      int64
		wantErr     bool
	}{
		{
			name: "inserted",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertAlertSQL)).
					WithArgs("nightly", "FAILURE", "ERROR", formatTime(opened), "nightly:FAILURE", "Job failed: nightly", `{"runId":"r1"}`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
			},
			wantCreated: true,
			wantID:      11,
		},
		{
			name: "dedupe conflict returns no row",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertAlertSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantCreated: false,
		},
		{
			name: "db error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertAlertSQL)).
					WillReturnError(errors.New("locked"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock new: %v", err)
			}
			defer db.Close()
			tt.mockExpect(mock)

			got, created, err := NewAlertSQL(db, SQLite).Open(ctx(t), in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if created != tt.wantCreated {
				t.Fatalf("created = %v, want %v", created, tt.wantCreated)
			}
			if created && (got.ID != tt.wantID || got.Status != models.AlertOpen) {
				t.Fatalf("unexpected alert: %+v", got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("mock expectations: %v", err)
			}
		})
	}
}

func TestAlertSQL_CloseOpen_ReturnsCount(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 2, 2, 3, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(closeOpenAlertsSQL)).
		WithArgs(formatTime(now), "nightly", "MISSED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewAlertSQL(db, SQLite).CloseOpen(ctx(t), "nightly", models.AlertMissed, now)
	if err != nil {
		t.Fatalf("CloseOpen: %v", err)
	}
	if n != 1 {
		t.Fatalf("closed = %d, want 1", n)
	}
}

func TestAlertSQL_Get(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewAlertSQL(db, SQLite)

	mock.ExpectQuery(regexp.QuoteMeta(selectAlertSQL)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(alertColumns).
			AddRow(5, "nightly", "MISSED", "WARN", "CLOSED", "2025-01-01T00:00:00.000000000Z", "2025-01-01T01:00:00.000000000Z",
				"nightly:MISSED", "Missed heartbeat: nightly", `{"graceSeconds":120}`))
	mock.ExpectQuery(regexp.QuoteMeta(selectAlertSQL)).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(alertColumns))

	a, err := repo.Get(ctx(t), 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a == nil || a.Status != models.AlertClosed || a.ClosedAt == nil || a.Details["graceSeconds"] != float64(120) {
		t.Fatalf("unexpected alert: %+v", a)
	}

	missing, err := repo.Get(ctx(t), 6)
	if err != nil || missing != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", missing, err)
	}
}

func TestAlertSQL_List_Filters(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	query := selectAlertsSQL + ` WHERE status = ? AND alert_type = ?` + alertOrderSQL + ` LIMIT ? OFFSET ?`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("OPEN", "FAILURE", 50, 0).
		WillReturnRows(sqlmock.NewRows(alertColumns))

	got, err := NewAlertSQL(db, SQLite).List(ctx(t), models.AlertFilter{Status: "OPEN", AlertType: "FAILURE", Limit: 50})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertSQL_CountOpenByType(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(countOpenAlertsTypeSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"alert_type", "count"}).
			AddRow("FAILURE", 2).
			AddRow("MISSED", 1))

	got, err := NewAlertSQL(db, SQLite).CountOpenByType(ctx(t))
	if err != nil {
		t.Fatalf("CountOpenByType: %v", err)
	}
	if got["FAILURE"] != 2 || got["MISSED"] != 1 || got["RECOVERY"] != 0 {
		t.Fatalf("unexpected counts: %v", got)
	}
}
