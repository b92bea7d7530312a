package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"chief_monitor/internal/models"
	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	enabled       bool
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) Enabled() bool { return m.enabled }
func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	return 0, nil
}
func (m *mockAuth) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	return false, nil
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockIngest struct {
	res     service.IngestResult
	err     error
	calls   int
	lastRaw []any
}

func (m *mockIngest) IngestEvents(ctx context.Context, raw []any) (service.IngestResult, error) {
	m.calls++
	m.lastRaw = raw
	if m.err != nil {
		return m.res, m.err
	}
	if m.res == (service.IngestResult{}) {
		return service.IngestResult{Inserted: len(raw)}, nil
	}
	return m.res, nil
}

type mockEventLog struct {
	resp       []models.TelemetryEvent
	err        error
	calls      int
	lastFilter models.EventFilter
}

func (m *mockEventLog) ListEvents(ctx context.Context, f models.EventFilter) ([]models.TelemetryEvent, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

type mockAlerts struct {
	list       []models.Alert
	listErr    error
	lastFilter models.AlertFilter

	closeRes   service.CloseAlertResult
	closeErr   error
	closeCalls int
	lastID     int64
	lastReason string
}

func (m *mockAlerts) ListAlerts(ctx context.Context, f models.AlertFilter) ([]models.Alert, error) {
	m.lastFilter = f
	return m.list, m.listErr
}
func (m *mockAlerts) CloseAlertByID(ctx context.Context, id int64, reason string) (service.CloseAlertResult, error) {
	m.closeCalls++
	m.lastID = id
	m.lastReason = reason
	return m.closeRes, m.closeErr
}

type mockStatus struct {
	summary    models.Summary
	summaryErr error
	jobs       []models.JobStatus
	jobsErr    error
	detail     models.JobDetail
	detailErr  error
	lastJob    string
}

func (m *mockStatus) Summary(ctx context.Context) (models.Summary, error) {
	return m.summary, m.summaryErr
}
func (m *mockStatus) Jobs(ctx context.Context) ([]models.JobStatus, error) {
	return m.jobs, m.jobsErr
}
func (m *mockStatus) JobDetail(ctx context.Context, jobName string) (models.JobDetail, error) {
	m.lastJob = jobName
	return m.detail, m.detailErr
}

type mockNotifications struct {
	settings   models.EmailAlertSettings
	getErr     error
	saveErr    error
	lastInput  service.EmailSettingsInput
	report     service.EmailSendReport
	testErr    error
	lastTestBy string
}

func (m *mockNotifications) GetEmailSettings(ctx context.Context) (models.EmailAlertSettings, error) {
	return m.settings, m.getErr
}
func (m *mockNotifications) SaveEmailSettings(ctx context.Context, in service.EmailSettingsInput) (models.EmailAlertSettings, error) {
	m.lastInput = in
	if m.saveErr != nil {
		return models.EmailAlertSettings{}, m.saveErr
	}
	return models.EmailAlertSettings{Recipients: in.Recipients, EnabledAlertTypes: in.EnabledAlertTypes}, nil
}
func (m *mockNotifications) SendTestEmail(ctx context.Context, requestedBy string) (service.EmailSendReport, error) {
	m.lastTestBy = requestedBy
	return m.report, m.testErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithKey(s, "")
}

func newTestRouterWithKey(s *service.Service, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, apiKey)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func perform(r http.Handler, method, target, body string, hdr http.Header) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
