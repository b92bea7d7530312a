package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerAPIKey    = "x-api-key"
	headerRequestID = "X-Request-ID"

	ctxRequestID = "requestId"
	ctxUserID    = "userId"
)

// requestIDMiddleware tags every request with an id (the caller's, or a new uuid).
func (h *Handler) requestIDMiddleware(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(headerRequestID))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Set(ctxRequestID, id)
	c.Header(headerRequestID, id)

	start := time.Now()
	c.Next()

	if h.log != nil {
		h.log.Debugw("http_request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *Handler) validAPIKey(c *gin.Context) bool {
	if h.apiKey == "" {
		return false
	}
	got := c.GetHeader(headerAPIKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.apiKey)) == 1
}

func (h *Handler) authEnabled() bool {
	return h.services.Authorization != nil && h.services.Enabled()
}

// apiKeyMiddleware guards ingestion: open when no key is configured.
func (h *Handler) apiKeyMiddleware(c *gin.Context) {
	if h.apiKey == "" || h.validAPIKey(c) {
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

// accessMiddleware guards read and operator routes. A valid api key always passes.
// With operator auth enabled a bearer token is required; otherwise the routes are
// open unless an api key is configured.
func (h *Handler) accessMiddleware(c *gin.Context) {
	if h.validAPIKey(c) {
		c.Next()
		return
	}
	if h.authEnabled() {
		h.userIdMiddleware(c)
		return
	}
	if h.apiKey == "" {
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(ctxUserID, userId)
	c.Next()
}
