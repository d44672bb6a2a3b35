package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
)

func playlistID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}
	return id, nil
}

// PlaylistList lists one page of the current user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.UserPlaylists(ctx, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}

	return r.render(page, func(w io.Writer) {
		formatter.PrintPlaylists(w, page.Items)
		fmt.Fprintf(w, "Showing %d of %d\n", len(page.Items), page.Total)
	})
}

// PlaylistShow shows a playlist with its first page of items.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id, err := playlistID(cmd)
	if err != nil {
		return err
	}

	p, err := r.client.Playlist(ctx, id)
	if err != nil {
		return err
	}

	return r.render(p, func(w io.Writer) {
		formatter.PrintPlaylist(w, p, p.Tracks.Items, p.Tracks.Offset.OrElse(0))
		if p.Tracks.HasNext() {
			fmt.Fprintf(w, "%d more items: spotx playlist items %s --all\n", p.Tracks.Total-len(p.Tracks.Items), id)
		}
	})
}

// PlaylistItems lists one page of a playlist's items, or every item with --all.
func (r *Runner) PlaylistItems(ctx context.Context, cmd *cli.Command) error {
	id, err := playlistID(cmd)
	if err != nil {
		return err
	}

	var items []models.PlaylistItem
	offset := 0
	if cmd.Bool("all") {
		if items, err = r.client.AllPlaylistItems(ctx, id); err != nil {
			return err
		}
	} else {
		page, err := r.client.PlaylistItems(ctx, id, cmd.Int("limit"), cmd.Int("offset"))
		if err != nil {
			return err
		}
		items, offset = page.Items, page.Offset.OrElse(0)
	}

	playables := make([]models.Playable, len(items))
	for i, item := range items {
		playables[i] = item.Track
	}

	return r.render(items, func(w io.Writer) {
		if offset > 0 {
			fmt.Fprintf(w, "Items from position %d\n", offset+1)
		}
		formatter.PrintPlayables(w, playables)
	})
}

// PlaylistExport exports the given playlists, or all of the user's playlists when none are given.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		var err error
		if ids, err = r.ownPlaylistIDs(ctx); err != nil {
			return err
		}
		if len(ids) == 0 {
			return r.writePlain("No playlists to export\n")
		}
	}

	format, err := tasks.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	exporter := tasks.NewExporter(r.client, nil, shared.WithLogger(r.logger, "component", "export"))
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range progress {
			if !r.jsonOutput {
				r.writePlain("%s\n", u.Message)
			}
		}
	}()

	result, err := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if result == nil {
		return err
	}

	if r.jsonOutput {
		if jerr := r.writeJSON(result, true); jerr != nil {
			return jerr
		}
	} else {
		r.writePlainln("Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}

	if err != nil {
		return err
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d playlists failed to export", result.FailedExports, result.TotalPlaylists)
	}
	return nil
}

// ownPlaylistIDs pages through the current user's playlists.
func (r *Runner) ownPlaylistIDs(ctx context.Context) ([]string, error) {
	var ids []string
	offset := 0
	for {
		page, err := r.client.UserPlaylists(ctx, services.MaxLimit, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Items {
			ids = append(ids, p.ID)
		}
		if !page.HasNext() || len(page.Items) == 0 {
			return ids, nil
		}
		offset += len(page.Items) + page.Skipped
	}
}
