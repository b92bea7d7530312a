package handlers

import (
	"bytes"
	"net/http"
	"sort"

	"chief_monitor/internal/models"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const metricPrefix = "chief_monitor_"

// @Summary      Prometheus metrics
// @Description  Summary gauges in the Prometheus text exposition format.
// @Tags         status
// @Produce      plain
// @Success      200  {string}  string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /metrics [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) metrics(c *gin.Context) {
	sum, err := h.services.Summary(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to build metrics", "metrics_failed", err)
		return
	}

	var buf bytes.Buffer
	for _, mf := range summaryFamilies(sum) {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to encode metrics", "metrics_encode_failed", err)
			return
		}
	}
	c.Data(http.StatusOK, string(expfmt.NewFormat(expfmt.TypeTextPlain)), buf.Bytes())
}

// summaryFamilies renders a Summary as gauge families with stable label order.
func summaryFamilies(sum models.Summary) []*dto.MetricFamily {
	online := 0.0
	if sum.Chief.Online {
		online = 1
	}
	return []*dto.MetricFamily{
		labeledGauge("checks", "Checks by current status.", "status",
			withKeys(sum.Checks, models.StatusUp, models.StatusLate, models.StatusDown)),
		labeledGauge("open_alerts", "Open alerts by type.", "type",
			withKeys(sum.ActiveAlerts, models.AlertFailure, models.AlertMissed, models.AlertRecovery)),
		gauge("events_total", "Telemetry events currently retained.", float64(sum.TotalEvents)),
		gauge("chief_online", "1 when the chief heartbeat is within its offline window.", online),
	}
}

// withKeys copies counts and fills the known keys with zero.
func withKeys(counts map[string]int, keys ...string) map[string]int {
	out := make(map[string]int, len(counts)+len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for k, v := range counts {
		out[k] = v
	}
	return out
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   ptr(metricPrefix + name),
		Help:   ptr(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: ptr(v)}}},
	}
}

func labeledGauge(name, help, label string, counts map[string]int) *dto.MetricFamily {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: ptr(metricPrefix + name),
		Help: ptr(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label: []*dto.LabelPair{{Name: ptr(label), Value: ptr(k)}},
			Gauge: &dto.Gauge{Value: ptr(float64(counts[k]))},
		})
	}
	return mf
}

func ptr[T any](v T) *T { return &v }
