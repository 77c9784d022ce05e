package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/musicbridge/musicbridge/internal/app"
	"github.com/musicbridge/musicbridge/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultBatchLimit = 50
	maxBatchLimit     = 500
)

// BatchHandler serves the batch history
type BatchHandler struct {
	batches *app.BatchService
	logger  *zap.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batches *app.BatchService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		batches: batches,
		logger:  logger,
	}
}

// ListBatches handles GET /api/v1/batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultBatchLimit)))
	if err != nil || limit <= 0 {
		limit = defaultBatchLimit
	}
	if limit > maxBatchLimit {
		limit = maxBatchLimit
	}

	batches, err := h.batches.List(c.Query("status"), limit)
	if err != nil {
		h.logger.Error("Failed to list batches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]domain.BatchView, len(batches))
	for i, b := range batches {
		views[i] = b.View()
	}
	c.JSON(http.StatusOK, views)
}

// GetStats handles GET /api/v1/batches/stats
func (h *BatchHandler) GetStats(c *gin.Context) {
	stats, err := h.batches.Stats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetBatch handles GET /api/v1/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.batches.Get(c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch.View())
}

// DeleteBatch handles DELETE /api/v1/batches/:id
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	id := c.Param("id")
	if err := h.batches.Delete(id); err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "batch deleted"})
}

func (h *BatchHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	h.logger.Error("Batch lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
