package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"chief_monitor/internal/models"
	"chief_monitor/internal/service"
)

func TestHealth(t *testing.T) {
	// health stays open even when everything else is locked down
	s := &service.Service{Authorization: &mockAuth{enabled: true}}
	r := newTestRouterWithKey(s, "secret")

	w := perform(r, http.MethodGet, "/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var out struct {
		OK      bool      `json:"ok"`
		Service string    `json:"service"`
		Now     time.Time `json:"now"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.OK || out.Service != "chief-monitor" || out.Now.IsZero() {
		t.Fatalf("unexpected health: %+v", out)
	}
}

func TestStatusHandlers_Summary(t *testing.T) {
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	st := &mockStatus{summary: models.Summary{
		Checks:        map[string]int{models.StatusUp: 3, models.StatusDown: 1},
		ActiveAlerts:  map[string]int{models.AlertMissed: 1},
		TotalEvents:   42,
		LatestEventAt: &at,
		Chief:         models.ChiefPresence{Online: true, LastHeartbeatAt: &at, OfflineAfterSeconds: 45},
	}}
	r := newTestRouter(&service.Service{Status: st})

	w := perform(r, http.MethodGet, "/v1/status/summary", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status=%d body=%s", w.Code, w.Body.String())
	}
	var got models.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TotalEvents != 42 || got.Checks[models.StatusUp] != 3 || !got.Chief.Online {
		t.Fatalf("unexpected summary: %+v", got)
	}

	st.summaryErr = errors.New("db down")
	w = perform(r, http.MethodGet, "/v1/status/summary", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestStatusHandlers_Jobs(t *testing.T) {
	st := &mockStatus{jobs: []models.JobStatus{
		{CheckState: models.CheckState{JobName: "nightly", Status: models.StatusUp, Enabled: true}},
	}}
	r := newTestRouter(&service.Service{Status: st})

	w := perform(r, http.MethodGet, "/v1/status/jobs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("jobs status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// the embedded check fields are flattened next to latestEvent
	if len(out.Jobs) != 1 || out.Jobs[0]["jobName"] != "nightly" {
		t.Fatalf("unexpected jobs: %+v", out.Jobs)
	}
	if _, ok := out.Jobs[0]["latestEvent"]; !ok {
		t.Fatalf("latestEvent missing: %+v", out.Jobs[0])
	}
}

func TestStatusHandlers_JobDetail(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "found", want: http.StatusOK},
		{name: "not found", err: service.ErrJobNotFound, want: http.StatusNotFound},
		{name: "store failure", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &mockStatus{
				detail:    models.JobDetail{Check: models.CheckState{JobName: "backup db"}},
				detailErr: tc.err,
			}
			r := newTestRouter(&service.Service{Status: st})

			w := perform(r, http.MethodGet, "/v1/status/jobs/backup%20db", "", nil)
			if w.Code != tc.want {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			if st.lastJob != "backup db" {
				t.Fatalf("job name not decoded: %q", st.lastJob)
			}
			if tc.want == http.StatusNotFound {
				var out map[string]any
				_ = json.Unmarshal(w.Body.Bytes(), &out)
				if out["error"] != "Job not found in check state" || out["jobName"] != "backup db" {
					t.Fatalf("unexpected 404 body: %v", out)
				}
			}
		})
	}
}

func TestStatusHandlers_RequireAccess(t *testing.T) {
	s := &service.Service{Status: &mockStatus{}, Authorization: &mockAuth{enabled: true, parseID: 7}}
	r := newTestRouter(s)

	if w := perform(r, http.MethodGet, "/v1/status/summary", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer, got %d", w.Code)
	}
	if w := perform(r, http.MethodGet, "/v1/status/summary", "", authHeader("valid")); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer, got %d", w.Code)
	}
}
