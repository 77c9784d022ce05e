package infrastructure

import (
	"context"
	"fmt"

	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// spotifyAPI is the part of *spotify.Client the catalog calls
type spotifyAPI interface {
	GetTrack(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullTrack, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	GetAlbum(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullAlbum, error)
	GetAlbumTracks(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.SimpleTrackPage, error)
}

// SpotifyCatalog implements domain.Catalog against the Spotify Web API
type SpotifyCatalog struct {
	api spotifyAPI
}

// NewSpotifyCatalog authenticates with the client credentials flow.
// The token source refreshes itself for the lifetime of ctx.
func NewSpotifyCatalog(ctx context.Context, config *domain.SpotifyConfig) (*SpotifyCatalog, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("spotify client id and secret are required")
	}

	creds := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	return &SpotifyCatalog{api: spotify.New(creds.Client(ctx))}, nil
}

// Track looks up a single track
func (c *SpotifyCatalog) Track(ctx context.Context, id string) (*domain.TrackRecord, error) {
	track, err := c.api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	record := fromFullTrack(track)
	return &record, nil
}

// PlaylistItems returns one page of a playlist. Episodes and removed
// tracks come back as nil entries so the caller can count the page.
func (c *SpotifyCatalog) PlaylistItems(ctx context.Context, id string, offset, limit int) ([]*domain.TrackRecord, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(id), spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s items at offset %d: %w", id, offset, err)
	}

	items := make([]*domain.TrackRecord, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track.Track == nil {
			items = append(items, nil)
			continue
		}
		record := fromFullTrack(item.Track.Track)
		items = append(items, &record)
	}
	return items, nil
}

// Album returns the album fields and its first page of tracks
func (c *SpotifyCatalog) Album(ctx context.Context, id string) (*domain.AlbumInfo, error) {
	album, err := c.api.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", id, err)
	}

	return &domain.AlbumInfo{
		Name:        album.Name,
		ReleaseDate: album.ReleaseDate,
		Tracks:      fromTrackPage(&album.Tracks, firstArtist(album.Artists)),
	}, nil
}

// AlbumTracks returns a later page of an album's tracks
func (c *SpotifyCatalog) AlbumTracks(ctx context.Context, id string, offset, limit int) (*domain.TrackPage, error) {
	page, err := c.api.GetAlbumTracks(ctx, spotify.ID(id), spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, fmt.Errorf("failed to get album %s tracks at offset %d: %w", id, offset, err)
	}
	result := fromTrackPage(page, "")
	return &result, nil
}

func fromFullTrack(track *spotify.FullTrack) domain.TrackRecord {
	return domain.TrackRecord{
		Name:        track.Name,
		Artist:      firstArtist(track.Artists),
		Album:       track.Album.Name,
		ReleaseDate: track.Album.ReleaseDate,
	}
}

func fromTrackPage(page *spotify.SimpleTrackPage, fallbackArtist string) domain.TrackPage {
	tracks := make([]domain.TrackRecord, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		artist := firstArtist(t.Artists)
		if artist == "" {
			artist = fallbackArtist
		}
		tracks = append(tracks, domain.TrackRecord{Name: t.Name, Artist: artist})
	}
	return domain.TrackPage{
		Tracks:  tracks,
		Offset:  int(page.Offset),
		HasNext: page.Next != "",
	}
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}
