package handlers

import (
	"errors"
	"net/http"
	"time"

	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Health check
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ok, service, now"
// @Router       /v1/health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": serviceName,
		"now":     time.Now().UTC(),
	})
}

// @Summary      Monitor summary
// @Description  Check counts by status, open alerts by type, event totals and chief presence.
// @Tags         status
// @Produce      json
// @Success      200  {object}  models.Summary
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/status/summary [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) getSummary(c *gin.Context) {
	sum, err := h.services.Summary(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to build summary", "summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// @Summary      Job statuses
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "jobs"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/status/jobs [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) getJobs(c *gin.Context) {
	jobs, err := h.services.Jobs(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load jobs", "jobs_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// @Summary      Job detail
// @Description  Check state, recent events and open alerts of one job.
// @Tags         status
// @Produce      json
// @Param        jobName  path      string  true  "Job name"
// @Success      200      {object}  models.JobDetail
// @Failure      401      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /v1/status/jobs/{jobName} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) getJobDetail(c *gin.Context) {
	jobName := c.Param("jobName")
	detail, err := h.services.JobDetail(c.Request.Context(), jobName)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found in check state", "jobName": jobName})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load job", "job_detail_failed", err, "job", jobName)
		return
	}
	c.JSON(http.StatusOK, detail)
}
