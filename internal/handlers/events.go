package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chief_monitor/internal/models"
	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	maxIngestBody = 2 << 20 // 2 MB
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// decodeBody reads a JSON body of any shape, numbers kept as float64.
func decodeBody(c *gin.Context) (any, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIngestBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxIngestBody {
		return nil, errors.New("request body too large")
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// @Summary      Ingest one event
// @Description  Invalid records are dropped and counted rather than rejected.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      models.TelemetryEvent  true  "Event record"
// @Success      202   {object}  service.IngestResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/events [post]
// @Security     ApiKeyAuth
func (h *Handler) ingestEvent(c *gin.Context) {
	body, err := decodeBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload: " + err.Error()})
		return
	}
	if _, ok := body.(map[string]any); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload: expected an object"})
		return
	}
	h.ingest(c, []any{body})
}

// @Summary      Ingest a batch of events
// @Description  Accepts a bare array or {"events": [...]}. Invalid records are dropped and counted.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      []models.TelemetryEvent  true  "Event records"
// @Success      202   {object}  service.IngestResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/events/batch [post]
// @Security     ApiKeyAuth
func (h *Handler) ingestBatch(c *gin.Context) {
	body, err := decodeBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch payload: " + err.Error()})
		return
	}
	records, err := service.BatchRecords(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch payload: expected an array or {\"events\": [...]}"})
		return
	}
	h.ingest(c, records)
}

func (h *Handler) ingest(c *gin.Context, records []any) {
	res, err := h.services.IngestEvents(c.Request.Context(), records)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to store events", "ingest_failed", err,
			"inserted", res.Inserted, "records", len(records))
		return
	}
	c.JSON(http.StatusAccepted, res)
}

// @Summary      List events
// @Description  Newest first. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day.
// @Tags         events
// @Produce      json
// @Param        jobName     query  string  false  "Job name"
// @Param        scriptPath  query  string  false  "Script path"
// @Param        level       query  string  false  "Level"  Enums(DEBUG,INFO,WARN,ERROR,CRITICAL)
// @Param        eventType   query  string  false  "Event type"
// @Param        from        query  string  false  "Start of range"  example(2025-08-01)
// @Param        to          query  string  false  "End of range"    example(2025-08-31)
// @Param        limit       query  int     false  "Page size (default 100, max 1000)"
// @Param        offset      query  int     false  "Offset (max 1000000)"
// @Success      200   {object}  map[string]interface{}  "events, limit, offset"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/events [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) listEvents(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		err  error
	)
	// Parse 'from' (optional)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// Parse 'to' (optional). If only a date is provided, make it end-of-day inclusive.
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	limit := queryPositiveInt(c, "limit", service.DefaultListLimit, service.MaxListLimit)
	offset := queryPositiveInt(c, "offset", 0, service.MaxListOffset)

	events, err := h.services.ListEvents(ctx, models.EventFilter{
		JobName:    c.Query("jobName"),
		ScriptPath: c.Query("scriptPath"),
		Level:      c.Query("level"),
		EventType:  c.Query("eventType"),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load events", "events_list_failed", err,
			"from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"limit":  limit,
		"offset": offset,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339Nano, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// queryPositiveInt reads a positive integer query value, falling back on anything
// missing or non-positive and capping at ceiling.
func queryPositiveInt(c *gin.Context, key string, fallback, ceiling int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	if v > ceiling {
		return ceiling
	}
	return v
}
