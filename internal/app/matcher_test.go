package app

import (
	"context"
	"errors"
	"testing"

	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatcher_BuildQuery(t *testing.T) {
	tests := []struct {
		name         string
		track        domain.TrackRecord
		includeAlbum bool
		suffix       string
		want         string
	}{
		{
			name:         "all fields",
			track:        domain.TrackRecord{Name: "Song", Artist: "Band", Album: "Record"},
			includeAlbum: true,
			suffix:       "official full video song",
			want:         "Band Song Record official full video song",
		},
		{
			name:         "album excluded",
			track:        domain.TrackRecord{Name: "Song", Artist: "Band", Album: "Record"},
			includeAlbum: false,
			suffix:       "official full video song",
			want:         "Band Song official full video song",
		},
		{
			name:         "empty fields dropped",
			track:        domain.TrackRecord{Name: "Song", Artist: " "},
			includeAlbum: true,
			suffix:       "",
			want:         "Song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(&fakeSearcher{}, &domain.YouTubeConfig{
				QuerySuffix:  tt.suffix,
				IncludeAlbum: tt.includeAlbum,
			}, zap.NewNop())
			assert.Equal(t, tt.want, m.BuildQuery(tt.track))
		})
	}
}

func TestMatcher_Find(t *testing.T) {
	config := &domain.YouTubeConfig{QuerySuffix: "official", IncludeAlbum: false}
	track := domain.TrackRecord{Name: "Song", Artist: "Band"}

	t.Run("first result", func(t *testing.T) {
		searcher := &fakeSearcher{results: map[string][]string{"Band Song official": {"abc", "def"}}}
		id, err := NewMatcher(searcher, config, zap.NewNop()).Find(context.Background(), track)
		require.NoError(t, err)
		assert.Equal(t, domain.MediaID("abc"), id)
		assert.Equal(t, []string{"Band Song official"}, searcher.queries)
	})

	t.Run("no results", func(t *testing.T) {
		_, err := NewMatcher(&fakeSearcher{}, config, zap.NewNop()).Find(context.Background(), track)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNoMatch)
		assert.Equal(t, domain.KindSearch, domain.KindOf(err))
	})

	t.Run("provider failure", func(t *testing.T) {
		quota := errors.New("quotaExceeded")
		_, err := NewMatcher(&fakeSearcher{err: quota}, config, zap.NewNop()).Find(context.Background(), track)
		require.Error(t, err)
		assert.ErrorIs(t, err, quota)
		assert.Equal(t, domain.KindSearch, domain.KindOf(err))
	})
}
