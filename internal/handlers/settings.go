package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Get email alert settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.EmailAlertSettings
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/settings/alerts/email [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) getEmailSettings(c *gin.Context) {
	st, err := h.services.GetEmailSettings(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load email settings", "email_settings_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Replace email alert settings
// @Description  Recipients are normalized to lowercase and de-duplicated (max 50).
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      service.EmailSettingsInput  true  "Settings"
// @Success      200   {object}  models.EmailAlertSettings
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/settings/alerts/email [put]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) putEmailSettings(c *gin.Context) {
	var in service.EmailSettingsInput
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}

	st, err := h.services.SaveEmailSettings(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSettings) || errors.Is(err, service.ErrEmailNotConfigured) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to save email settings", "email_settings_put_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Send a test alert email
// @Tags         settings
// @Produce      json
// @Success      200  {object}  service.EmailSendReport
// @Failure      400  {object}  service.EmailSendReport
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  service.EmailSendReport
// @Router       /v1/settings/alerts/email/test [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) testEmail(c *gin.Context) {
	var requestedBy string
	if uid, ok := c.Get(ctxUserID); ok {
		if id, ok := uid.(int); ok {
			requestedBy = "user:" + strconv.Itoa(id)
		}
	} else if h.validAPIKey(c) {
		requestedBy = "api-key"
	}

	report, err := h.services.SendTestEmail(c.Request.Context(), requestedBy)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, service.ErrEmailNotConfigured), errors.Is(err, service.ErrNoRecipients):
		c.JSON(http.StatusBadRequest, report)
	case report.Attempted > 0:
		if h.log != nil {
			h.log.Warnw("test_email_provider_failed", "request_id", c.GetString(ctxRequestID), "err", err)
		}
		c.JSON(http.StatusBadGateway, report)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to send test email", "test_email_failed", err)
	}
}
