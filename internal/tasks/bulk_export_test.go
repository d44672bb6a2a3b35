package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// mockSource serves playlists from memory. Playlists listed in failing return err.
type mockSource struct {
	mu        sync.Mutex
	playlists map[string]models.Playlist
	items     map[string][]models.PlaylistItem
	failing   map[string]error
	allCalls  int
}

func newMockSource(n int) (*mockSource, []string) {
	src := &mockSource{
		playlists: map[string]models.Playlist{},
		items:     map[string][]models.PlaylistItem{},
		failing:   map[string]error{},
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("playlist%d", i+1)
		ids[i] = id
		items := []models.PlaylistItem{
			{Track: models.Playable{Kind: models.KindTrack, Track: &models.Track{Name: "Song 1", URI: "spotify:track:1"}}},
			{Track: models.Playable{Kind: models.KindTrack, Track: &models.Track{Name: "Song 2", URI: "spotify:track:2"}}},
		}
		src.playlists[id] = models.Playlist{
			ID:          id,
			Name:        fmt.Sprintf("Playlist %d", i+1),
			Description: codec.Some(fmt.Sprintf("Test playlist %d", i+1)),
			Tracks:      codec.Envelope[models.PlaylistItem]{Items: items, Total: len(items)},
		}
		src.items[id] = items
	}
	return src, ids
}

func (m *mockSource) Playlist(_ context.Context, id string) (models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failing[id]; ok {
		return models.Playlist{}, err
	}
	p, ok := m.playlists[id]
	if !ok {
		return models.Playlist{}, &shared.APIError{Status: 404, Message: "Not found."}
	}
	return p, nil
}

func (m *mockSource) AllPlaylistItems(_ context.Context, id string) ([]models.PlaylistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allCalls++
	return m.items[id], nil
}

func TestFetch(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		src, ids := newMockSource(1)
		e := NewExporter(src, nil, nil)

		export, err := e.Fetch(context.Background(), ids[0])
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(export.Items) != 2 || src.allCalls != 0 {
			t.Errorf("expected first page only, got %d items and %d pagination calls", len(export.Items), src.allCalls)
		}
	})

	t.Run("follows pagination", func(t *testing.T) {
		src, ids := newMockSource(1)
		p := src.playlists[ids[0]]
		p.Tracks.Items = p.Tracks.Items[:1]
		p.Tracks.Next = codec.Some("https://api.spotify.com/v1/playlists/playlist1/tracks?offset=1")
		src.playlists[ids[0]] = p

		export, err := NewExporter(src, nil, nil).Fetch(context.Background(), ids[0])
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(export.Items) != 2 || src.allCalls != 1 {
			t.Errorf("expected all items, got %d items and %d pagination calls", len(export.Items), src.allCalls)
		}
	})

	t.Run("no source", func(t *testing.T) {
		if _, err := NewExporter(nil, nil, nil).Fetch(context.Background(), "x"); !errors.Is(err, shared.ErrConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name          string
		format        string
		playlistCount int
		filesEach     int
	}{
		{name: "json export", format: "json", playlistCount: 1, filesEach: 1},
		{name: "csv export", format: "csv", playlistCount: 3, filesEach: 2},
		{name: "text export", format: "txt", playlistCount: 2, filesEach: 1},
		{name: "markdown export", format: "md", playlistCount: 1, filesEach: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			src, ids := newMockSource(tt.playlistCount)

			result, err := NewExporter(src, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{
				Format:    tt.format,
				OutputDir: tempDir,
				RateLimit: 1000,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.SuccessfulExports != tt.playlistCount || result.FailedExports != 0 {
				t.Errorf("expected %d successes, got %d (%d failed)", tt.playlistCount, result.SuccessfulExports, result.FailedExports)
			}

			for _, res := range result.Results {
				if len(res.Files) != tt.filesEach {
					t.Errorf("%s: expected %d files, got %d", res.PlaylistID, tt.filesEach, len(res.Files))
				}
				for _, f := range res.Files {
					if _, err := os.Stat(f); err != nil {
						t.Errorf("expected file %s: %v", f, err)
					}
				}
			}
		})
	}

	t.Run("partial failures", func(t *testing.T) {
		tempDir := t.TempDir()
		src, ids := newMockSource(3)
		src.failing["playlist2"] = &shared.RateLimitError{APIError: &shared.APIError{Status: 429}, RetryAfter: 30}

		result, err := NewExporter(src, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{
			OutputDir: tempDir,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Fatalf("expected 2/1, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}

		failed := result.Results[1]
		if failed.PlaylistID != "playlist2" || !errors.Is(failed.Error, shared.ErrRateLimited) {
			t.Errorf("expected rate-limited failure for playlist2, got %+v", failed)
		}

		data, err := os.ReadFile(filepath.Join(tempDir, "export_manifest.json"))
		if err != nil {
			t.Fatalf("manifest not written: %v", err)
		}

		var manifest BulkExportResult
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}

		if manifest.FailedExports != 1 || !strings.Contains(manifest.Results[1].ErrorMessage, "429") {
			t.Errorf("unexpected manifest %+v", manifest)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		src, ids := newMockSource(5)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := NewExporter(src, nil, nil).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}

		if result == nil || result.SuccessfulExports == len(ids) {
			t.Errorf("expected a partial result, got %+v", result)
		}
	})

	t.Run("default options", func(t *testing.T) {
		opts := BulkExportOpts{NumWorkers: 50}
		if err := opts.defaults(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if opts.Format != FormatJSON || opts.NumWorkers != 10 || opts.RateLimit != 5 {
			t.Errorf("unexpected defaults %+v", opts)
		}

		if !strings.HasPrefix(opts.OutputDir, "spotify_export_") {
			t.Errorf("unexpected output dir %q", opts.OutputDir)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		src, ids := newMockSource(1)
		if _, err := NewExporter(src, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{Format: "xml"}); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		src, ids := newMockSource(2)
		prog := make(chan ProgressUpdate, 100)

		if _, err := NewExporter(src, nil, nil).BulkExport(context.Background(), prog, ids, BulkExportOpts{
			OutputDir: t.TempDir(),
			RateLimit: 1000,
		}); err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		close(prog)

		phases := map[Phase]int{}
		for u := range prog {
			phases[u.Phase]++
		}

		if phases[FetchPlaylist] != 2 || phases[WriteManifest] != 1 || phases[ExportPlaylist] != 4 {
			t.Errorf("unexpected phase counts %v", phases)
		}
	})

	t.Run("progress never blocks", func(t *testing.T) {
		src, ids := newMockSource(3)
		prog := make(chan ProgressUpdate)

		result, err := NewExporter(src, nil, nil).BulkExport(context.Background(), prog, ids, BulkExportOpts{
			OutputDir: t.TempDir(),
			RateLimit: 1000,
		})
		if err != nil || result.SuccessfulExports != 3 {
			t.Errorf("expected export to complete without a reader, got %v", err)
		}
	})
}
