package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuality_Format(t *testing.T) {
	tests := []struct {
		quality  Quality
		expected string
	}{
		{QualityHighest, "bestvideo+bestaudio/best"},
		{Quality1080p, "bestvideo[height<=1080]+bestaudio/best"},
		{Quality720p, "bestvideo[height<=720]+bestaudio/best"},
		{Quality480p, "bestvideo[height<=480]+bestaudio/best"},
		{Quality360p, "bestvideo[height<=360]+bestaudio/best"},
		{QualityLowest, "worstvideo+bestaudio/best"},
	}

	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			assert.True(t, tt.quality.IsKnown())
			assert.Equal(t, tt.expected, tt.quality.Format())
		})
	}
}

func TestQuality_UnknownFallsBackToDefault(t *testing.T) {
	for _, q := range []Quality{"4k", "", "1080p", "highest"} {
		assert.False(t, q.IsKnown())
		assert.Equal(t, DefaultFormat, q.Format())
	}
}

func TestParseDownloadType(t *testing.T) {
	dt, err := ParseDownloadType("")
	require.NoError(t, err)
	assert.Equal(t, TypeVideo, dt)

	dt, err = ParseDownloadType("Audio")
	require.NoError(t, err)
	assert.Equal(t, TypeAudio, dt)

	_, err = ParseDownloadType("podcast")
	assert.Error(t, err)
}

func TestTrackRecord(t *testing.T) {
	track := TrackRecord{Name: "Song", Artist: "Band", Album: "Record", ReleaseDate: "1999-04-01"}

	assert.Equal(t, "Band - Song", track.DisplayName())
	assert.Equal(t, "1999", track.Year())
	assert.Empty(t, TrackRecord{ReleaseDate: "99"}.Year())
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", MediaID("abc").URL())
}
