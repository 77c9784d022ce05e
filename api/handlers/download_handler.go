package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/musicbridge/musicbridge/internal/app"
	"github.com/musicbridge/musicbridge/internal/domain"
	"go.uber.org/zap"
)

// Response headers describing the batch behind an archive
const (
	HeaderBatchID       = "X-Batch-ID"
	HeaderTracksFetched = "X-Tracks-Fetched"
	HeaderTracksFailed  = "X-Tracks-Failed"
)

// DownloadHandler handles download requests
type DownloadHandler struct {
	batches     *app.BatchService
	archiveName string
	logger      *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(batches *app.BatchService, archiveName string, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		batches:     batches,
		archiveName: archiveName,
		logger:      logger,
	}
}

// DownloadRequest represents a request to download a catalog URL
type DownloadRequest struct {
	URL        string `json:"url" binding:"required"`
	OutputPath string `json:"output_path,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Type       string `json:"type,omitempty"`
}

// ExportResponse is returned instead of an archive when files were
// written to the requested output path
type ExportResponse struct {
	Status       string               `json:"status"`
	BatchID      string               `json:"batch_id"`
	Files        []string             `json:"files"`
	FailedTracks []domain.FailedTrack `json:"failed_tracks"`
}

// Download handles POST /download
func (h *DownloadHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewBatchError(domain.KindInvalidRequest, fmt.Errorf("invalid request body: %w", err)))
		return
	}

	result, err := h.batches.Run(c.Request.Context(), app.BatchRequest{
		URL:        req.URL,
		OutputPath: req.OutputPath,
		Quality:    req.Quality,
		Type:       req.Type,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header(HeaderBatchID, result.Batch.ID)
	c.Header(HeaderTracksFetched, strconv.Itoa(result.Batch.FetchedCount))
	c.Header(HeaderTracksFailed, strconv.Itoa(result.Batch.FailedCount))

	if result.Exported {
		c.JSON(http.StatusOK, ExportResponse{
			Status:       "success",
			BatchID:      result.Batch.ID,
			Files:        result.Files,
			FailedTracks: result.Failed,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.archiveName))
	c.Data(http.StatusOK, "application/zip", result.Archive.Bytes())
}

func (h *DownloadHandler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(domain.HTTPStatusOf(err), gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}
