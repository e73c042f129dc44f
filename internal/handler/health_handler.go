package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and which optional integrations are active.
type HealthHandler struct {
	serviceName         string
	geocodingConfigured bool
	eventsEnabled       bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(serviceName string, geocodingConfigured, eventsEnabled bool) *HealthHandler {
	return &HealthHandler{
		serviceName:         serviceName,
		geocodingConfigured: geocodingConfigured,
		eventsEnabled:       eventsEnabled,
	}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"service":              h.serviceName,
		"geocoding_configured": h.geocodingConfigured,
		"events_enabled":       h.eventsEnabled,
	})
}
