package handlers

import (
	"chief_monitor/internal/logger"
	"chief_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "chief-monitor"

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	apiKey   string
}

// NewHandler constructs a new HTTP handler with dependencies. An empty apiKey leaves
// ingestion open.
func NewHandler(services *service.Service, log *logger.Logger, apiKey string) *Handler {
	return &Handler{services: services, log: log, apiKey: apiKey}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Prometheus scrape and live summary stream share the read access rules.
	router.GET("/metrics", h.accessMiddleware, h.metrics)
	router.GET("/ws", h.accessMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.GET("/health", h.health)

	ingest := v1.Group("/events", h.apiKeyMiddleware)
	{
		ingest.POST("", h.ingestEvent)
		ingest.POST("/batch", h.ingestBatch)
	}

	api := v1.Group("", h.accessMiddleware)
	{
		api.GET("/events", h.listEvents)
		h.registerStatusRoutes(api)
		h.registerAlertRoutes(api)
		h.registerSettingsRoutes(api)
	}
}

func (h *Handler) registerStatusRoutes(api *gin.RouterGroup) {
	status := api.Group("/status")
	{
		status.GET("/summary", h.getSummary)
		status.GET("/jobs", h.getJobs)
		status.GET("/jobs/:jobName", h.getJobDetail)
	}
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.POST("/:alertId/close", h.closeAlert)
	}
}

func (h *Handler) registerSettingsRoutes(api *gin.RouterGroup) {
	email := api.Group("/settings/alerts/email")
	{
		email.GET("", h.getEmailSettings)
		email.PUT("", h.putEmailSettings)
		email.POST("/test", h.testEmail)
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", c.GetString(ctxRequestID)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}
