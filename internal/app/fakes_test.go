package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/musicbridge/musicbridge/internal/domain"
)

// fakeCatalog serves canned metadata; pages are sliced from full listings
type fakeCatalog struct {
	tracks    map[string]domain.TrackRecord
	playlist  []*domain.TrackRecord
	endless   bool // every playlist page comes back full
	albumName string
	albumDate string
	album     []domain.TrackRecord
	albumHead int // tracks embedded in the album lookup
	err       error

	playlistCalls int
	albumCalls    int
}

func (f *fakeCatalog) Track(ctx context.Context, id string) (*domain.TrackRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tracks[id]
	if !ok {
		return nil, errors.New("404 non existing id")
	}
	return &t, nil
}

func (f *fakeCatalog) PlaylistItems(ctx context.Context, id string, offset, limit int) ([]*domain.TrackRecord, error) {
	f.playlistCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.endless {
		page := make([]*domain.TrackRecord, limit)
		for i := range page {
			page[i] = &domain.TrackRecord{Name: fmt.Sprintf("T%d", offset+i), Artist: "Loop"}
		}
		return page, nil
	}
	if offset >= len(f.playlist) {
		return nil, nil
	}
	end := min(offset+limit, len(f.playlist))
	return f.playlist[offset:end], nil
}

func (f *fakeCatalog) Album(ctx context.Context, id string) (*domain.AlbumInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	head := min(f.albumHead, len(f.album))
	return &domain.AlbumInfo{
		Name:        f.albumName,
		ReleaseDate: f.albumDate,
		Tracks: domain.TrackPage{
			Tracks:  append([]domain.TrackRecord(nil), f.album[:head]...),
			HasNext: head < len(f.album),
		},
	}, nil
}

func (f *fakeCatalog) AlbumTracks(ctx context.Context, id string, offset, limit int) (*domain.TrackPage, error) {
	f.albumCalls++
	if f.err != nil {
		return nil, f.err
	}
	end := min(offset+limit, len(f.album))
	return &domain.TrackPage{
		Tracks:  append([]domain.TrackRecord(nil), f.album[offset:end]...),
		Offset:  offset,
		HasNext: end < len(f.album),
	}, nil
}

// fakeSearcher maps queries to IDs by the track name found in the query
type fakeSearcher struct {
	results map[string][]string // query -> ids
	err     error
	queries []string
}

func (f *fakeSearcher) SearchVideos(ctx context.Context, query string, maxResults int64) ([]string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

// fakeFetcher writes "<hint>.<ext>" into the request dir
type fakeFetcher struct {
	ext      string
	failIDs  map[domain.MediaID]bool
	requests []domain.FetchRequest
	onFetch  func(n int)
}

func (f *fakeFetcher) Fetch(ctx context.Context, req domain.FetchRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.onFetch != nil {
		f.onFetch(len(f.requests))
	}
	if f.failIDs[req.MediaID] {
		return "", errors.New("video unavailable")
	}
	ext := f.ext
	if ext == "" {
		ext = "mp4"
		if req.Type == domain.TypeAudio {
			ext = "mp3"
		}
	}
	path := filepath.Join(req.Dir, req.NameHint+"."+ext)
	if err := os.WriteFile(path, []byte("media:"+string(req.MediaID)), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTagger struct {
	tagged []string
	err    error
}

func (f *fakeTagger) Tag(path string, track domain.TrackRecord) error {
	f.tagged = append(f.tagged, filepath.Base(path))
	return f.err
}

type fakePacer struct {
	waits int
	err   error
}

func (f *fakePacer) Wait(ctx context.Context) error {
	f.waits++
	return f.err
}

type fakePackager struct {
	packed []string
	err    error
}

func (f *fakePackager) Pack(paths []string) (*bytes.Buffer, error) {
	f.packed = append([]string(nil), paths...)
	if f.err != nil {
		return nil, f.err
	}
	buf := new(bytes.Buffer)
	for _, p := range paths {
		buf.WriteString(filepath.Base(p) + "\n")
	}
	return buf, nil
}

type fakeNotifier struct {
	titles []string
}

func (f *fakeNotifier) Send(title, message string) error {
	f.titles = append(f.titles, title)
	return nil
}

// memoryRepo implements domain.BatchRepository for testing
type memoryRepo struct {
	mu      sync.Mutex
	batches map[string]domain.Batch
	order   []string
	updates []domain.BatchStatus
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{batches: make(map[string]domain.Batch)}
}

func (m *memoryRepo) Create(batch *domain.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.ID] = *batch
	m.order = append(m.order, batch.ID)
	m.updates = append(m.updates, batch.Status)
	return nil
}

func (m *memoryRepo) Update(batch *domain.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.ID] = *batch
	m.updates = append(m.updates, batch.Status)
	return nil
}

func (m *memoryRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[id]; !ok {
		return domain.ErrBatchNotFound
	}
	delete(m.batches, id)
	return nil
}

func (m *memoryRepo) FindByID(id string) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return &b, nil
}

func (m *memoryRepo) FindAll(filters map[string]interface{}) ([]*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Batch
	for i := len(m.order) - 1; i >= 0; i-- {
		b, ok := m.batches[m.order[i]]
		if !ok {
			continue
		}
		if status, ok := filters["status"]; ok && b.Status != status {
			continue
		}
		out = append(out, &b)
	}
	return out, nil
}

func (m *memoryRepo) GetStats() (*domain.BatchStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.BatchStats{Total: int64(len(m.batches))}, nil
}

func (m *memoryRepo) Ping() error { return nil }
