package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musicbridge/musicbridge/internal/app"
)

// Version is reported by the health endpoint; set at build time
var Version = "dev"

// HealthHandler handles health check requests
type HealthHandler struct {
	batches *app.BatchService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(batches *app.BatchService) *HealthHandler {
	return &HealthHandler{
		batches: batches,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.batches.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "history database unreachable: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
