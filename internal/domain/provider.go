package domain

import (
	"bytes"
	"context"
)

// Catalog is the metadata provider seen by the resolver.
// PlaylistItems returns nil entries for items whose track is gone.
type Catalog interface {
	Track(ctx context.Context, id string) (*TrackRecord, error)
	PlaylistItems(ctx context.Context, id string, offset, limit int) ([]*TrackRecord, error)
	Album(ctx context.Context, id string) (*AlbumInfo, error)
	AlbumTracks(ctx context.Context, id string, offset, limit int) (*TrackPage, error)
}

// AlbumInfo carries album-level fields and the first page of tracks
type AlbumInfo struct {
	Name        string
	ReleaseDate string
	Tracks      TrackPage
}

// TrackPage is one page of an album listing. Tracks carry no album fields.
type TrackPage struct {
	Tracks  []TrackRecord
	Offset  int
	HasNext bool
}

// VideoSearcher runs a video search and returns result IDs in rank order
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string, maxResults int64) ([]string, error)
}

// FetchRequest describes one media download
type FetchRequest struct {
	MediaID  MediaID
	Dir      string
	Quality  Quality
	Type     DownloadType
	NameHint string
}

// MediaFetcher downloads a media item and returns the exact path written
type MediaFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (string, error)
}

// Tagger writes track metadata into a downloaded file
type Tagger interface {
	Tag(path string, track TrackRecord) error
}

// Packager bundles files into an in-memory archive
type Packager interface {
	Pack(paths []string) (*bytes.Buffer, error)
}

// Pacer blocks between consecutive tracks of a batch
type Pacer interface {
	Wait(ctx context.Context) error
}

// Notifier announces batch outcomes
type Notifier interface {
	Send(title, message string) error
}
