package domain

import (
	"fmt"
	"strings"
)

// TrackRecord is the metadata of one track as reported by the catalog
type TrackRecord struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// DisplayName returns the "<artist> - <name>" form used for file names
func (t TrackRecord) DisplayName() string {
	return t.Artist + " - " + t.Name
}

// Year returns the four digit release year, or "" when unknown
func (t TrackRecord) Year() string {
	if len(t.ReleaseDate) < 4 {
		return ""
	}
	return t.ReleaseDate[:4]
}

// MediaID identifies a video located by the search provider
type MediaID string

// URL returns the watch URL for the media item
func (m MediaID) URL() string {
	return "https://www.youtube.com/watch?v=" + string(m)
}

// Quality is a named tier mapping to a format selection expression
type Quality string

const (
	QualityHighest Quality = "Highest"
	Quality1080p   Quality = "1080px"
	Quality720p    Quality = "720px"
	Quality480p    Quality = "480px"
	Quality360p    Quality = "360px"
	QualityLowest  Quality = "Lowest"
)

// DefaultFormat is used for unknown quality tiers
const DefaultFormat = "bestvideo+bestaudio/best"

// AudioFormatSelector selects the source stream for audio downloads
const AudioFormatSelector = "bestaudio/best"

var qualityFormats = map[Quality]string{
	QualityHighest: "bestvideo+bestaudio/best",
	Quality1080p:   "bestvideo[height<=1080]+bestaudio/best",
	Quality720p:    "bestvideo[height<=720]+bestaudio/best",
	Quality480p:    "bestvideo[height<=480]+bestaudio/best",
	Quality360p:    "bestvideo[height<=360]+bestaudio/best",
	QualityLowest:  "worstvideo+bestaudio/best",
}

// Format returns the yt-dlp format expression for the tier
func (q Quality) Format() string {
	if f, ok := qualityFormats[q]; ok {
		return f
	}
	return DefaultFormat
}

// IsKnown reports whether q is one of the enumerated tiers
func (q Quality) IsKnown() bool {
	_, ok := qualityFormats[q]
	return ok
}

// DownloadType selects between keeping the video or extracting audio
type DownloadType string

const (
	TypeVideo DownloadType = "video"
	TypeAudio DownloadType = "audio"
)

// ParseDownloadType validates a request value. Empty means video.
func ParseDownloadType(s string) (DownloadType, error) {
	switch DownloadType(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeVideo:
		return TypeVideo, nil
	case TypeAudio:
		return TypeAudio, nil
	default:
		return "", fmt.Errorf("invalid download type %q: must be video or audio", s)
	}
}
