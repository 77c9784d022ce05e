package infrastructure

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/musicbridge/musicbridge/internal/domain"
)

// ID3Tagger writes track metadata into mp3 files. Other formats are left alone.
type ID3Tagger struct{}

// NewID3Tagger creates a new tagger
func NewID3Tagger() *ID3Tagger {
	return &ID3Tagger{}
}

// Tag sets title, artist, album and year frames on path
func (t *ID3Tagger) Tag(path string, track domain.TrackRecord) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open tags of %s: %w", filepath.Base(path), err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(track.Name)
	tag.SetArtist(track.Artist)
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}
	if year := track.Year(); year != "" {
		tag.SetYear(year)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags of %s: %w", filepath.Base(path), err)
	}
	return nil
}
