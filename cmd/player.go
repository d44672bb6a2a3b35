package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
)

// PlayerStatus shows the current playback state, or "Nothing playing" when there is none.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	state, err := r.client.PlaybackState(ctx)
	if err != nil {
		return err
	}

	return r.render(state, func(w io.Writer) {
		s, ok := state.Get()
		if !ok {
			fmt.Fprintln(w, "Nothing playing")
			return
		}
		formatter.PrintPlaybackState(w, s)
	})
}

// PlayerQueue shows the current item and the queue.
func (r *Runner) PlayerQueue(ctx context.Context, cmd *cli.Command) error {
	queue, err := r.client.Queue(ctx)
	if err != nil {
		return err
	}
	return r.render(queue, func(w io.Writer) { formatter.PrintQueue(w, queue) })
}

// PlayerRecent lists recently played tracks, optionally before a point in time.
func (r *Runner) PlayerRecent(ctx context.Context, cmd *cli.Command) error {
	var before time.Time
	if raw := cmd.String("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("%w: --before must be RFC 3339: %v", shared.ErrInvalidArgument, err)
		}
		before = t
	}

	page, err := r.client.RecentlyPlayed(ctx, cmd.Int("limit"), before)
	if err != nil {
		return err
	}

	return r.render(page, func(w io.Writer) {
		formatter.PrintHistory(w, page.Items)
		if c, ok := page.Cursors.Get(); ok && page.HasNext() {
			fmt.Fprintf(w, "More history available before cursor %s\n", c.Before.OrElse(""))
		}
	})
}

// PlayerDevices lists the user's available devices.
func (r *Runner) PlayerDevices(ctx context.Context, cmd *cli.Command) error {
	devices, err := r.client.Devices(ctx)
	if err != nil {
		return err
	}
	return r.render(devices, func(w io.Writer) { formatter.PrintDevices(w, devices) })
}

// PlayerPlay starts or resumes playback, optionally of a context or a list of URIs.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	opts := services.PlayOptions{
		DeviceID:   cmd.String("device"),
		ContextURI: cmd.String("context"),
		URIs:       cmd.StringSlice("uri"),
		PositionMS: cmd.Int("position"),
	}
	return r.playerCommand(ctx, "play", func(ctx context.Context) error { return r.client.Play(ctx, opts) })
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	device := cmd.String("device")
	return r.playerCommand(ctx, "pause", func(ctx context.Context) error { return r.client.Pause(ctx, device) })
}

// PlayerNext skips to the next item.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	device := cmd.String("device")
	return r.playerCommand(ctx, "next", func(ctx context.Context) error { return r.client.Next(ctx, device) })
}

// PlayerPrevious skips to the previous item.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	device := cmd.String("device")
	return r.playerCommand(ctx, "previous", func(ctx context.Context) error { return r.client.Previous(ctx, device) })
}

// PlayerAdd appends a URI to the queue.
func (r *Runner) PlayerAdd(ctx context.Context, cmd *cli.Command) error {
	uri := strings.TrimSpace(cmd.StringArg("uri"))
	device := cmd.String("device")
	return r.playerCommand(ctx, "queued "+uri, func(ctx context.Context) error { return r.client.AddToQueue(ctx, uri, device) })
}

func (r *Runner) playerCommand(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if r.jsonOutput {
		return r.writeJSON(map[string]any{"ok": true, "command": name}, false)
	}
	return r.writePlain("✓ %s\n", name)
}

// PlayerWatch runs the interactive now-playing view. Logs go to the configured log file while it runs.
func (r *Runner) PlayerWatch(ctx context.Context, cmd *cli.Command) error {
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "spotx.log"
	}

	fileLogger, closer := shared.NewFileLogger(logPath)
	defer closer.Close()
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())

	model := ui.NewModel(ctx, r.client, cmd.Duration("interval"), fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running player view: %w", err)
	}
	return nil
}
