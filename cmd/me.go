package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
)

// MeProfile shows the current user's profile.
func (r *Runner) MeProfile(ctx context.Context, cmd *cli.Command) error {
	user, err := r.client.Me(ctx)
	if err != nil {
		return err
	}
	return r.render(user, func(w io.Writer) { formatter.PrintUser(w, user) })
}

// MeFollowed lists followed artists using cursor paging.
func (r *Runner) MeFollowed(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.FollowedArtists(ctx, cmd.Int("limit"), cmd.String("after"))
	if err != nil {
		return err
	}

	return r.render(page, func(w io.Writer) {
		formatter.PrintArtists(w, page.Items)
		if c, ok := page.Cursors.Get(); ok {
			if after, ok := c.After.Get(); ok && after != "" {
				fmt.Fprintf(w, "Next page: --after %s\n", after)
			}
		}
	})
}

// MeTopTracks lists the user's top tracks over a time range.
func (r *Runner) MeTopTracks(ctx context.Context, cmd *cli.Command) error {
	tr, err := services.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}

	page, err := r.client.TopTracks(ctx, tr, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}
	return r.render(page, func(w io.Writer) { formatter.PrintTracks(w, page.Items) })
}

// MeTopArtists lists the user's top artists over a time range.
func (r *Runner) MeTopArtists(ctx context.Context, cmd *cli.Command) error {
	tr, err := services.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}

	page, err := r.client.TopArtists(ctx, tr, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}
	return r.render(page, func(w io.Writer) { formatter.PrintArtists(w, page.Items) })
}

// MeSavedTracks lists tracks in the user's library.
func (r *Runner) MeSavedTracks(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.SavedTracks(ctx, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}

	tracks := make([]models.Track, len(page.Items))
	for i, s := range page.Items {
		tracks[i] = s.Track
	}
	return r.render(page, func(w io.Writer) { formatter.PrintTracks(w, tracks) })
}

// MeSavedEpisodes lists episodes in the user's library.
func (r *Runner) MeSavedEpisodes(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.SavedEpisodes(ctx, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}

	episodes := make([]models.Episode, len(page.Items))
	for i, s := range page.Items {
		episodes[i] = s.Episode
	}
	return r.render(page, func(w io.Writer) { formatter.PrintEpisodes(w, episodes) })
}
