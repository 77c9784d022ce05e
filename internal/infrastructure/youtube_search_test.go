package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *YouTubeSearcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	searcher, err := NewYouTubeSearcher(context.Background(), "test-key",
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return searcher
}

func TestYouTubeSearcher_SearchVideos(t *testing.T) {
	var gotQuery, gotType, gotMax string
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#channel","channelId":"chan"}},
			{"id":{"kind":"youtube#video","videoId":"dQw4w9WgXcQ"}}
		]}`))
	})

	ids, err := searcher.SearchVideos(context.Background(), "Band Song official full video song", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, ids)
	assert.Equal(t, "Band Song official full video song", gotQuery)
	assert.Equal(t, "video", gotType)
	assert.Equal(t, "1", gotMax)
}

func TestYouTubeSearcher_NoResults(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	})

	ids, err := searcher.SearchVideos(context.Background(), "nothing", 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestYouTubeSearcher_ProviderError(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	})

	_, err := searcher.SearchVideos(context.Background(), "q", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quotaExceeded")
}

func TestNewYouTubeSearcher_RequiresKey(t *testing.T) {
	_, err := NewYouTubeSearcher(context.Background(), "")
	assert.Error(t, err)
}
