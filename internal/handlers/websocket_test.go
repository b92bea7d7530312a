package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"chief_monitor/internal/models"
	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, "")

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 2 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 2 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 2 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 2 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 2 * time.Second},
		{"both_present_interval_wins", "/ws?interval=5s&interval_ms=150", 5 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialSummaryStream(t *testing.T, st *mockStatus) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Status: st}, nil, "")
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("interval_ms", "20") // fast ticks for the test
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocket_SummaryStream_InitialAndPeriodic(t *testing.T) {
	st := &mockStatus{summary: models.Summary{
		Checks:       map[string]int{models.StatusUp: 2},
		ActiveAlerts: map[string]int{},
		TotalEvents:  7,
		Chief:        models.ChiefPresence{Online: true, OfflineAfterSeconds: 45},
	}}
	conn := dialSummaryStream(t, st)

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "summary" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var sum models.Summary
	if err := json.Unmarshal(env.Data, &sum); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if sum.TotalEvents != 7 || sum.Checks[models.StatusUp] != 2 || !sum.Chief.Online {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	// Read a subsequent tick
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "summary" {
		t.Fatalf("expected type=summary, got %+v", env)
	}
}

func TestWebSocket_SummaryError_SendsErrorEnvelope(t *testing.T) {
	conn := dialSummaryStream(t, &mockStatus{summaryErr: errors.New("boom")})

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "error" || env.Error == "" || len(env.Data) != 0 {
		t.Fatalf("expected error envelope, got %+v", env)
	}
}
