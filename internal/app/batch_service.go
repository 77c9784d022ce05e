package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/musicbridge/musicbridge/internal/infrastructure"
	"github.com/musicbridge/musicbridge/internal/observability"
	"github.com/musicbridge/musicbridge/pkg/logger"
	"go.uber.org/zap"
)

// BatchRequest is one download request
type BatchRequest struct {
	URL        string
	OutputPath string
	Quality    string
	Type       string
}

// BatchResult is the outcome of a successful batch. Archive is nil when the
// files were exported to an output path instead.
type BatchResult struct {
	Batch    *domain.Batch
	Archive  *bytes.Buffer
	Files    []string
	Failed   []domain.FailedTrack
	Exported bool
}

// BatchDeps groups the collaborators of a BatchService
type BatchDeps struct {
	Repo     domain.BatchRepository
	Resolver *Resolver
	Matcher  *Matcher
	Fetcher  domain.MediaFetcher
	Tagger   domain.Tagger // optional
	Packager domain.Packager
	NewPacer func() domain.Pacer
	Notifier domain.Notifier // optional
	Metrics  *observability.Metrics
	Events   *logger.MultiLogger // optional
}

// BatchService runs download batches end to end and serves their history
type BatchService struct {
	BatchDeps
	config *domain.DownloadConfig
	logger *zap.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(deps BatchDeps, config *domain.DownloadConfig, log *zap.Logger) *BatchService {
	return &BatchService{
		BatchDeps: deps,
		config:    config,
		logger:    log,
	}
}

// Run resolves the URL, fetches every track in order and packages the
// results. The working directory is removed before Run returns, whatever
// the outcome.
func (s *BatchService) Run(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	quality, downloadType, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	batch := domain.NewBatch(strings.TrimSpace(req.URL), quality, downloadType)
	if err := s.Repo.Create(batch); err != nil {
		return nil, domain.NewBatchError(domain.KindInternal, fmt.Errorf("failed to create batch: %w", err))
	}

	s.Metrics.BatchesInFlight.Inc()
	defer s.Metrics.BatchesInFlight.Dec()

	s.logger.Info("Batch started",
		zap.String("id", batch.ID),
		zap.String("url", batch.URL),
		zap.String("quality", string(quality)),
		zap.String("type", string(downloadType)))
	s.event("batch_started", batch)

	workDir, err := infrastructure.NewWorkDir(s.config.WorkDir)
	if err != nil {
		return nil, s.fail(batch, domain.NewBatchError(domain.KindInternal, err))
	}

	var files []string
	defer func() {
		s.cleanup(batch, workDir, files)
	}()

	res, tracks, err := s.Resolver.Resolve(ctx, batch.URL)
	if err != nil {
		return nil, s.fail(batch, err)
	}
	if len(tracks) == 0 {
		return nil, s.fail(batch, domain.NewBatchError(domain.KindResolve, domain.ErrEmptyCollection))
	}

	batch.MarkFetching(res.Kind, len(tracks))
	s.update(batch)

	var (
		failed   []domain.FailedTrack
		firstErr error
		hints    = make(map[string]bool)
		pacer    = s.NewPacer()
	)
	for i, track := range tracks {
		if i > 0 {
			if err := pacer.Wait(ctx); err != nil {
				return nil, s.fail(batch, domain.NewBatchError(domain.KindFetch, fmt.Errorf("batch interrupted: %w", err)))
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, s.fail(batch, domain.NewBatchError(domain.KindFetch, fmt.Errorf("batch interrupted: %w", err)))
		}

		path, err := s.processTrack(ctx, workDir.Path, track, quality, downloadType, uniqueHint(hints, track))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failed = append(failed, domain.FailedTrack{
				Index:  i,
				Name:   track.Name,
				Artist: track.Artist,
				Stage:  domain.KindOf(err),
				Error:  err.Error(),
			})
			s.logger.Warn("Track skipped",
				zap.String("batch_id", batch.ID),
				zap.Int("index", i),
				zap.String("track", track.DisplayName()),
				zap.Error(err))
			continue
		}
		files = append(files, path)
		s.Metrics.TracksTotal.WithLabelValues(observability.TrackFetched).Inc()
	}

	if err := ctx.Err(); err != nil {
		batch.SetFailures(len(files), failed)
		return nil, s.fail(batch, domain.NewBatchError(domain.KindFetch, fmt.Errorf("batch interrupted: %w", err)))
	}

	if len(files) == 0 {
		batch.SetFailures(0, failed)
		return nil, s.fail(batch, domain.NewBatchError(domain.KindFetch, fmt.Errorf("%w: %w", domain.ErrNothingFetched, firstErr)))
	}

	batch.MarkPackaging(len(files), failed)
	s.update(batch)

	result := &BatchResult{
		Batch:  batch,
		Files:  baseNames(files),
		Failed: batch.Failures(),
	}

	if req.OutputPath != "" && s.config.AllowOutputPath {
		if err := exportFiles(files, req.OutputPath); err != nil {
			return nil, s.fail(batch, domain.NewBatchError(domain.KindPackaging, err))
		}
		result.Exported = true
		batch.MarkDone(0)
	} else {
		archive, err := s.Packager.Pack(files)
		if err != nil {
			return nil, s.fail(batch, domain.NewBatchError(domain.KindPackaging, err))
		}
		result.Archive = archive
		batch.MarkDone(int64(archive.Len()))
		s.Metrics.ArchiveBytes.Observe(float64(archive.Len()))
	}

	s.update(batch)
	s.finish(batch)

	s.logger.Info("Batch finished",
		zap.String("id", batch.ID),
		zap.String("status", string(batch.Status)),
		zap.Int("fetched", batch.FetchedCount),
		zap.Int("failed", batch.FailedCount),
		zap.Duration("duration", batch.Duration()))

	return result, nil
}

func (s *BatchService) validate(req BatchRequest) (domain.Quality, domain.DownloadType, error) {
	if strings.TrimSpace(req.URL) == "" {
		return "", "", domain.NewBatchError(domain.KindInvalidRequest, errors.New("url is required"))
	}

	typ := req.Type
	if typ == "" {
		typ = s.config.DefaultType
	}
	downloadType, err := domain.ParseDownloadType(typ)
	if err != nil {
		return "", "", domain.NewBatchError(domain.KindInvalidRequest, err)
	}

	quality := domain.Quality(req.Quality)
	if quality == "" {
		quality = domain.Quality(s.config.DefaultQuality)
	}
	if !quality.IsKnown() {
		s.logger.Warn("Unknown quality, using default format",
			zap.String("quality", string(quality)),
			zap.String("format", domain.DefaultFormat))
	}

	if req.OutputPath != "" && !s.config.AllowOutputPath {
		s.logger.Warn("output_path ignored, exports are disabled",
			zap.String("output_path", req.OutputPath))
	}

	return quality, downloadType, nil
}

// processTrack searches, fetches and tags one track
func (s *BatchService) processTrack(ctx context.Context, dir string, track domain.TrackRecord, quality domain.Quality, downloadType domain.DownloadType, hint string) (string, error) {
	mediaID, err := s.Matcher.Find(ctx, track)
	if err != nil {
		s.Metrics.TracksTotal.WithLabelValues(observability.TrackSearchFailed).Inc()
		return "", err
	}

	path, err := s.Fetcher.Fetch(ctx, domain.FetchRequest{
		MediaID:  mediaID,
		Dir:      dir,
		Quality:  quality,
		Type:     downloadType,
		NameHint: hint,
	})
	if err != nil {
		s.Metrics.TracksTotal.WithLabelValues(observability.TrackFetchFailed).Inc()
		return "", domain.NewBatchError(domain.KindFetch, err)
	}

	if downloadType == domain.TypeAudio && s.config.TagAudio && s.Tagger != nil {
		if err := s.Tagger.Tag(path, track); err != nil {
			s.logger.Warn("Failed to tag audio file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
		}
	}

	return path, nil
}

// uniqueHint returns the sanitized "<artist> - <name>" stem, suffixed
// " (n)" until it differs case-insensitively from every earlier stem.
func uniqueHint(seen map[string]bool, track domain.TrackRecord) string {
	stem := infrastructure.SanitizeName(track.DisplayName())
	name := stem
	for n := 2; seen[strings.ToLower(name)]; n++ {
		name = infrastructure.SuffixName(stem, fmt.Sprintf(" (%d)", n))
	}
	seen[strings.ToLower(name)] = true
	return name
}

func (s *BatchService) fail(batch *domain.Batch, err error) error {
	batch.MarkFailed(err)
	s.update(batch)
	s.finish(batch)

	s.logger.Error("Batch failed",
		zap.String("id", batch.ID),
		zap.String("kind", string(domain.KindOf(err))),
		zap.Error(err))
	if s.Events != nil {
		s.Events.LogAppError("batch failed",
			zap.String("batch_id", batch.ID),
			zap.String("url", batch.URL),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err))
	}
	return err
}

// finish records metrics, the lifecycle event and the desktop notification
func (s *BatchService) finish(batch *domain.Batch) {
	s.Metrics.BatchesTotal.WithLabelValues(string(batch.Status)).Inc()
	s.Metrics.BatchDuration.Observe(batch.Duration().Seconds())
	s.event("batch_"+string(batch.Status), batch)

	if s.Notifier != nil {
		title, message := infrastructure.BatchNotification(batch)
		if err := s.Notifier.Send(title, message); err != nil {
			s.logger.Warn("Failed to send notification", zap.Error(err))
		}
	}
}

func (s *BatchService) update(batch *domain.Batch) {
	if err := s.Repo.Update(batch); err != nil {
		s.logger.Error("Failed to update batch",
			zap.String("id", batch.ID),
			zap.String("status", string(batch.Status)),
			zap.Error(err))
	}
}

func (s *BatchService) event(name string, batch *domain.Batch) {
	if s.Events == nil {
		return
	}
	s.Events.LogBatchEvent(name,
		zap.String("batch_id", batch.ID),
		zap.String("url", batch.URL),
		zap.String("status", string(batch.Status)),
		zap.Int("tracks", batch.TrackCount),
		zap.Int("fetched", batch.FetchedCount),
		zap.Int("failed", batch.FailedCount))
}

// cleanup never fails the request; problems are logged and counted
func (s *BatchService) cleanup(batch *domain.Batch, workDir *infrastructure.WorkDir, files []string) {
	if err := workDir.Cleanup(files); err != nil {
		s.Metrics.CleanupFailures.Inc()
		cleanupErr := domain.NewBatchError(domain.KindCleanup, err)
		s.logger.Error("Failed to clean up working directory",
			zap.String("batch_id", batch.ID),
			zap.String("dir", workDir.Path),
			zap.Error(cleanupErr))
		if s.Events != nil {
			s.Events.LogAppError("cleanup failed",
				zap.String("batch_id", batch.ID),
				zap.String("kind", string(domain.KindCleanup)),
				zap.Error(cleanupErr))
		}
		return
	}
	s.logger.Debug("Working directory removed",
		zap.String("batch_id", batch.ID),
		zap.Int("files", len(files)))
}

// Get returns one batch
func (s *BatchService) Get(id string) (*domain.Batch, error) {
	return s.Repo.FindByID(id)
}

// List returns batches newest first. An empty status matches all.
func (s *BatchService) List(status string, limit int) ([]*domain.Batch, error) {
	filters := make(map[string]interface{})
	if status != "" {
		filters["status"] = domain.BatchStatus(status)
	}
	if limit > 0 {
		filters["limit"] = limit
	}
	return s.Repo.FindAll(filters)
}

// Stats returns history statistics
func (s *BatchService) Stats() (*domain.BatchStats, error) {
	return s.Repo.GetStats()
}

// Delete removes a history entry
func (s *BatchService) Delete(id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Batch deleted", zap.String("id", id))
	return nil
}

// Ready reports whether the history store is reachable
func (s *BatchService) Ready() error {
	return s.Repo.Ping()
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// exportFiles copies each file into dir under its base name
func exportFiles(files []string, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, file := range files {
		if err := copyFile(file, filepath.Join(dir, filepath.Base(file))); err != nil {
			return fmt.Errorf("failed to export %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
