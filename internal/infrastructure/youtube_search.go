package infrastructure

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeSearcher implements domain.VideoSearcher with the YouTube Data API
type YouTubeSearcher struct {
	service *youtube.Service
}

// NewYouTubeSearcher creates a searcher authenticated with an API key.
// Extra options are appended, which lets tests point it at a local server.
func NewYouTubeSearcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}

	service, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &YouTubeSearcher{service: service}, nil
}

// SearchVideos returns video IDs for query in rank order
func (s *YouTubeSearcher) SearchVideos(ctx context.Context, query string, maxResults int64) ([]string, error) {
	resp, err := s.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		ids = append(ids, item.Id.VideoId)
	}
	return ids, nil
}
