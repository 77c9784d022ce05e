package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ResourceKind is a resource type in the Spotify catalog
type ResourceKind string

const (
	ResourceTrack    ResourceKind = "track"
	ResourceAlbum    ResourceKind = "album"
	ResourcePlaylist ResourceKind = "playlist"
	ResourceArtist   ResourceKind = "artist"
	ResourceShow     ResourceKind = "show"
	ResourceEpisode  ResourceKind = "episode"
)

var knownKinds = map[ResourceKind]bool{
	ResourceTrack:    true,
	ResourceAlbum:    true,
	ResourcePlaylist: true,
	ResourceArtist:   false,
	ResourceShow:     false,
	ResourceEpisode:  false,
}

var (
	catalogHosts = map[string]bool{
		"open.spotify.com": true,
		"play.spotify.com": true,
	}
	catalogID  = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)
	localePart = regexp.MustCompile(`^intl-[a-z]{2}(-[A-Za-z]{2})?$`)
)

// Resource is a parsed catalog reference
type Resource struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id"`
}

// Supported reports whether the resource can be downloaded
func (r Resource) Supported() bool {
	return knownKinds[r.Kind]
}

// URI returns the spotify:kind:id form
func (r Resource) URI() string {
	return fmt.Sprintf("spotify:%s:%s", r.Kind, r.ID)
}

// ParseResource classifies a share link or spotify: URI.
//
// Accepted forms:
//
//	https://open.spotify.com/track/<id>?si=...
//	https://open.spotify.com/intl-de/album/<id>
//	spotify:playlist:<id>
func ParseResource(raw string) (Resource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Resource{}, fmt.Errorf("%w: empty url", ErrInvalidResourceURL)
	}

	var kind, id string
	if strings.HasPrefix(raw, "spotify:") {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return Resource{}, fmt.Errorf("%w: %s", ErrInvalidResourceURL, raw)
		}
		kind, id = parts[1], parts[2]
	} else {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || !catalogHosts[strings.ToLower(u.Host)] {
			return Resource{}, fmt.Errorf("%w: %s", ErrInvalidResourceURL, raw)
		}

		segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(segments) > 0 && localePart.MatchString(segments[0]) {
			segments = segments[1:]
		}
		if len(segments) != 2 {
			return Resource{}, fmt.Errorf("%w: %s", ErrInvalidResourceURL, raw)
		}
		kind, id = segments[0], segments[1]
	}

	supported, known := knownKinds[ResourceKind(kind)]
	if !known || !catalogID.MatchString(id) {
		return Resource{}, fmt.Errorf("%w: %s", ErrInvalidResourceURL, raw)
	}

	res := Resource{Kind: ResourceKind(kind), ID: id}
	if !supported {
		return res, fmt.Errorf("%w: %s", ErrUnsupportedResource, kind)
	}
	return res, nil
}
