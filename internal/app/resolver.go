package app

import (
	"context"
	"fmt"

	"github.com/musicbridge/musicbridge/internal/domain"
	"go.uber.org/zap"
)

// Resolver turns a catalog URL into an ordered list of track records
type Resolver struct {
	catalog domain.Catalog
	config  *domain.SpotifyConfig
	logger  *zap.Logger
}

// NewResolver creates a new resolver
func NewResolver(catalog domain.Catalog, config *domain.SpotifyConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		config:  config,
		logger:  logger,
	}
}

// Resolve parses rawURL and fetches its tracks. Every failure is a
// resolve-kind BatchError.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (domain.Resource, []domain.TrackRecord, error) {
	res, err := domain.ParseResource(rawURL)
	if err != nil {
		return res, nil, domain.NewBatchError(domain.KindResolve, err)
	}

	var tracks []domain.TrackRecord
	switch res.Kind {
	case domain.ResourceTrack:
		tracks, err = r.resolveTrack(ctx, res.ID)
	case domain.ResourcePlaylist:
		tracks, err = r.resolvePlaylist(ctx, res.ID)
	case domain.ResourceAlbum:
		tracks, err = r.resolveAlbum(ctx, res.ID)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnsupportedResource, res.Kind)
	}
	if err != nil {
		return res, nil, domain.NewBatchError(domain.KindResolve, err)
	}

	r.logger.Debug("Resolved metadata",
		zap.String("kind", string(res.Kind)),
		zap.String("id", res.ID),
		zap.Int("tracks", len(tracks)))

	return res, tracks, nil
}

func (r *Resolver) resolveTrack(ctx context.Context, id string) ([]domain.TrackRecord, error) {
	track, err := r.catalog.Track(ctx, id)
	if err != nil {
		return nil, err
	}
	return []domain.TrackRecord{*track}, nil
}

// resolvePlaylist pages until a short page or the page cap
func (r *Resolver) resolvePlaylist(ctx context.Context, id string) ([]domain.TrackRecord, error) {
	limit := r.config.PageSize
	var tracks []domain.TrackRecord
	offset := 0

	for page := 0; page < r.config.MaxPages; page++ {
		items, err := r.catalog.PlaylistItems(ctx, id, offset, limit)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item != nil {
				tracks = append(tracks, *item)
			}
		}
		if len(items) < limit {
			return tracks, nil
		}
		offset += len(items)
	}

	r.logger.Warn("Playlist page cap reached, listing truncated",
		zap.String("id", id),
		zap.Int("max_pages", r.config.MaxPages),
		zap.Int("tracks", len(tracks)))
	return tracks, nil
}

// resolveAlbum follows the listing cursor and copies album fields onto each track
func (r *Resolver) resolveAlbum(ctx context.Context, id string) ([]domain.TrackRecord, error) {
	album, err := r.catalog.Album(ctx, id)
	if err != nil {
		return nil, err
	}

	var tracks []domain.TrackRecord
	page := album.Tracks
	for pages := 1; ; pages++ {
		for _, t := range page.Tracks {
			t.Album = album.Name
			t.ReleaseDate = album.ReleaseDate
			tracks = append(tracks, t)
		}

		if !page.HasNext || len(page.Tracks) == 0 {
			return tracks, nil
		}
		if pages >= r.config.MaxPages {
			r.logger.Warn("Album page cap reached, listing truncated",
				zap.String("id", id),
				zap.Int("max_pages", r.config.MaxPages),
				zap.Int("tracks", len(tracks)))
			return tracks, nil
		}

		next, err := r.catalog.AlbumTracks(ctx, id, page.Offset+len(page.Tracks), r.config.AlbumPageSize)
		if err != nil {
			return nil, err
		}
		page = *next
	}
}
