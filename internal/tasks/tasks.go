// package tasks implements playlist export operations over the Spotify client.
package tasks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
)

// PlaylistSource is the subset of [services.Client] needed to export playlists.
type PlaylistSource interface {
	Playlist(ctx context.Context, playlistID string) (models.Playlist, error)
	AllPlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error)
}

var _ PlaylistSource = (*services.Client)(nil)

// Exporter fetches playlists and writes them to disk.
type Exporter struct {
	source PlaylistSource
	images *http.Client
	logger *log.Logger
}

// NewExporter creates an [Exporter]. images downloads cover art for Markdown exports; nil uses a default client.
func NewExporter(source PlaylistSource, images *http.Client, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Exporter{source: source, images: images, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Fetch returns a playlist together with all of its items.
func (e *Exporter) Fetch(ctx context.Context, playlistID string) (*formatter.PlaylistExport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrConfiguration)
	}

	playlist, err := e.source.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	items := playlist.Tracks.Items
	if playlist.Tracks.HasNext() {
		if items, err = e.source.AllPlaylistItems(ctx, playlistID); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("fetched playlist", "id", playlistID, "items", len(items))
	return &formatter.PlaylistExport{Playlist: playlist, Items: items}, nil
}
