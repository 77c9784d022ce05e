package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the current state of a batch
type BatchStatus string

const (
	BatchResolving BatchStatus = "resolving"
	BatchFetching  BatchStatus = "fetching"
	BatchPackaging BatchStatus = "packaging"
	BatchCompleted BatchStatus = "completed"
	BatchPartial   BatchStatus = "partial"
	BatchFailed    BatchStatus = "failed"
)

// FailedTrack is one entry of a batch's failure manifest
type FailedTrack struct {
	Index  int       `json:"index"`
	Name   string    `json:"name"`
	Artist string    `json:"artist"`
	Stage  ErrorKind `json:"stage"`
	Error  string    `json:"error"`
}

// Batch is the history record of one download request
type Batch struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	URL          string       `json:"url" gorm:"not null"`
	ResourceKind string       `json:"resource_kind,omitempty"`
	Quality      Quality      `json:"quality"`
	DownloadType DownloadType `json:"type"`
	Status       BatchStatus  `json:"status" gorm:"not null;index"`
	TrackCount   int          `json:"track_count"`
	FetchedCount int          `json:"fetched_count"`
	FailedCount  int          `json:"failed_count"`
	FailedTracks string       `json:"-" gorm:"type:text"` // JSON manifest
	ErrorKind    ErrorKind    `json:"error_kind,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	ArchiveSize  int64        `json:"archive_size"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// NewBatch creates a batch for a request
func NewBatch(url string, quality Quality, downloadType DownloadType) *Batch {
	now := time.Now()
	return &Batch{
		ID:           uuid.New().String(),
		URL:          url,
		Quality:      quality,
		DownloadType: downloadType,
		Status:       BatchResolving,
		CreatedAt:    now,
		UpdatedAt:    now,
		StartedAt:    &now,
	}
}

// MarkFetching records the resolved track count
func (b *Batch) MarkFetching(kind ResourceKind, trackCount int) {
	b.Status = BatchFetching
	b.ResourceKind = string(kind)
	b.TrackCount = trackCount
	b.UpdatedAt = time.Now()
}

// MarkPackaging records per-track outcomes before the archive is built
func (b *Batch) MarkPackaging(fetched int, failed []FailedTrack) {
	b.Status = BatchPackaging
	b.SetFailures(fetched, failed)
	b.UpdatedAt = time.Now()
}

// SetFailures stores the fetched count and the failure manifest
func (b *Batch) SetFailures(fetched int, failed []FailedTrack) {
	b.FetchedCount = fetched
	b.FailedCount = len(failed)
	if len(failed) == 0 {
		b.FailedTracks = ""
		return
	}
	data, err := json.Marshal(failed)
	if err == nil {
		b.FailedTracks = string(data)
	}
}

// Failures decodes the failure manifest
func (b *Batch) Failures() []FailedTrack {
	if b.FailedTracks == "" {
		return []FailedTrack{}
	}
	var failed []FailedTrack
	if err := json.Unmarshal([]byte(b.FailedTracks), &failed); err != nil {
		return []FailedTrack{}
	}
	return failed
}

// MarkDone marks a successful batch as completed or partial
func (b *Batch) MarkDone(archiveSize int64) {
	b.Status = BatchCompleted
	if b.FailedCount > 0 {
		b.Status = BatchPartial
	}
	b.ArchiveSize = archiveSize
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
}

// MarkFailed marks the batch as failed
func (b *Batch) MarkFailed(err error) {
	b.Status = BatchFailed
	b.ErrorKind = KindOf(err)
	b.ErrorMessage = err.Error()
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
}

// IsTerminal checks if the batch has finished
func (b *Batch) IsTerminal() bool {
	return b.Status == BatchCompleted || b.Status == BatchPartial || b.Status == BatchFailed
}

// Duration returns how long the batch ran, or zero while running
func (b *Batch) Duration() time.Duration {
	if b.StartedAt == nil || b.CompletedAt == nil {
		return 0
	}
	return b.CompletedAt.Sub(*b.StartedAt)
}

// BatchView is the API representation of a batch
type BatchView struct {
	*Batch
	FailedTracks []FailedTrack `json:"failed_tracks"`
}

// View returns the batch with its decoded failure manifest
func (b *Batch) View() BatchView {
	return BatchView{Batch: b, FailedTracks: b.Failures()}
}

// BatchStats represents history statistics
type BatchStats struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	Partial      int64 `json:"partial"`
	Failed       int64 `json:"failed"`
	Running      int64 `json:"running"`
	TracksTotal  int64 `json:"tracks_total"`
	TracksFailed int64 `json:"tracks_failed"`
}
