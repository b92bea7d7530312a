package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"chief_monitor/internal/models"
	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// closeAlertInput is the optional body of an operator close.
type closeAlertInput struct {
	Reason *string `json:"reason"`
}

// @Summary      List alerts
// @Description  Newest first.
// @Tags         alerts
// @Produce      json
// @Param        jobName    query  string  false  "Job name"
// @Param        status     query  string  false  "Status"    Enums(OPEN,CLOSED)
// @Param        alertType  query  string  false  "Type"      Enums(FAILURE,MISSED,RECOVERY)
// @Param        severity   query  string  false  "Severity"  Enums(INFO,WARN,ERROR,CRITICAL)
// @Param        limit      query  int     false  "Page size (default 100, max 1000)"
// @Param        offset     query  int     false  "Offset"
// @Success      200  {object}  map[string]interface{}  "alerts, limit, offset"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/alerts [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) listAlerts(c *gin.Context) {
	limit := queryPositiveInt(c, "limit", service.DefaultListLimit, service.MaxListLimit)
	offset := queryPositiveInt(c, "offset", 0, service.MaxListOffset)

	alerts, err := h.services.ListAlerts(c.Request.Context(), models.AlertFilter{
		JobName:   strings.TrimSpace(c.Query("jobName")),
		Status:    strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		AlertType: strings.ToUpper(strings.TrimSpace(c.Query("alertType"))),
		Severity:  strings.ToUpper(strings.TrimSpace(c.Query("severity"))),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load alerts", "alerts_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"limit":  limit,
		"offset": offset,
	})
}

// @Summary      Close an alert
// @Description  Closing an already closed alert succeeds with updated=false.
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        alertId  path      int              true   "Alert ID"
// @Param        body     body      closeAlertInput  false  "Optional reason (1-200 chars)"
// @Success      200      {object}  service.CloseAlertResult
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      404      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]string
// @Router       /v1/alerts/{alertId}/close [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) closeAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("alertId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alertId must be a positive integer"})
		return
	}

	reason := ""
	if c.Request.ContentLength != 0 {
		var in closeAlertInput
		if ok := h.bindJSONOrBadRequest(c, &in); !ok {
			return
		}
		if in.Reason != nil {
			reason = strings.TrimSpace(*in.Reason)
			if n := utf8.RuneCountInString(reason); n == 0 || n > service.MaxCloseReasonLen {
				c.JSON(http.StatusBadRequest, gin.H{"error": "reason must be 1-200 characters"})
				return
			}
		}
	}

	res, err := h.services.CloseAlertByID(c.Request.Context(), id, reason)
	if err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found", "alertId": id})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to close alert", "alert_close_failed", err, "alert_id", id)
		return
	}
	c.JSON(http.StatusOK, res)
}
