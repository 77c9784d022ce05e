package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// searchResults is the number of results requested per track; the first wins
const searchResults = 1

// Matcher finds a video for a track record
type Matcher struct {
	searcher domain.VideoSearcher
	config   *domain.YouTubeConfig
	logger   *zap.Logger
}

// NewMatcher creates a new matcher
func NewMatcher(searcher domain.VideoSearcher, config *domain.YouTubeConfig, logger *zap.Logger) *Matcher {
	return &Matcher{
		searcher: searcher,
		config:   config,
		logger:   logger,
	}
}

// BuildQuery joins artist, name, album and suffix, dropping empty parts
func (m *Matcher) BuildQuery(track domain.TrackRecord) string {
	album := lo.Ternary(m.config.IncludeAlbum, track.Album, "")
	parts := lo.Map([]string{track.Artist, track.Name, album, m.config.QuerySuffix}, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return strings.Join(lo.Filter(parts, func(s string, _ int) bool { return s != "" }), " ")
}

// Find returns the top search result for track
func (m *Matcher) Find(ctx context.Context, track domain.TrackRecord) (domain.MediaID, error) {
	query := m.BuildQuery(track)

	ids, err := m.searcher.SearchVideos(ctx, query, searchResults)
	if err != nil {
		return "", domain.NewBatchError(domain.KindSearch, fmt.Errorf("search failed for %q: %w", query, err))
	}
	if len(ids) == 0 {
		return "", domain.NewBatchError(domain.KindSearch, fmt.Errorf("%w: %s", domain.ErrNoMatch, query))
	}

	m.logger.Debug("Matched track",
		zap.String("query", query),
		zap.String("media_id", ids[0]))

	return domain.MediaID(ids[0]), nil
}
