// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/desertthunder/spotx/internal/ui"
)

// newApp builds the root command with the global flags every subcommand inherits.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotx",
		Usage:   "Typed Spotify Web API client",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SPOTX_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET (default: ./.env when present)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Log level: debug, info, warn, error (default: from config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON instead of tables",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address while the command runs",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playerCommand, playlistCommand, meCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func deviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "Target device ID (default: the active device)",
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of items to return (1-50)",
		Value: services.DefaultLimit,
	}
}

func offsetFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "offset",
		Usage: "Index of the first item to return",
	}
}

// setupCommand creates the config file and token database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the token database",
		Action: r.Setup,
	}
}

// authCommand handles the OAuth flow and stored token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL for a manual flow",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "State value to embed (default: generated)",
					},
					&cli.BoolFlag{
						Name:  "show-dialog",
						Usage: "Ask Spotify to show the consent dialog even if already approved",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:      "exchange",
				Usage:     "Exchange an authorization code, or the full redirect URL, for a token",
				ArgsUsage: "<code|redirect-url>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "code"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "Expected state, overriding the one saved by `auth url`",
					},
				},
				Action: r.AuthExchange,
			},
			{
				Name:  "refresh",
				Usage: "Refresh the access token now",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "refresh-token",
						Usage: "Refresh token to use instead of the stored one",
					},
				},
				Action: r.AuthRefresh,
			},
			{
				Name:   "status",
				Usage:  "Show the stored token state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// playerCommand handles playback state and control
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "player",
		Aliases: []string{"p"},
		Usage:   "Inspect and control playback",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show what is playing and where",
				Action: r.PlayerStatus,
			},
			{
				Name:   "queue",
				Usage:  "Show the playback queue",
				Action: r.PlayerQueue,
			},
			{
				Name:  "recent",
				Usage: "Show recently played tracks",
				Flags: []cli.Flag{
					limitFlag(),
					&cli.StringFlag{
						Name:  "before",
						Usage: "Only items played before this RFC 3339 time",
					},
				},
				Action: r.PlayerRecent,
			},
			{
				Name:   "devices",
				Usage:  "List available devices",
				Action: r.PlayerDevices,
			},
			{
				Name:  "play",
				Usage: "Start or resume playback",
				Flags: []cli.Flag{
					deviceFlag(),
					&cli.StringFlag{
						Name:  "context",
						Usage: "Album, artist or playlist URI to play",
					},
					&cli.StringSliceFlag{
						Name:  "uri",
						Usage: "Track or episode URI to play (repeatable)",
					},
					&cli.IntFlag{
						Name:  "position",
						Usage: "Start position in milliseconds",
					},
				},
				Action: r.PlayerPlay,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerPause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next item",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerNext,
			},
			{
				Name:    "prev",
				Aliases: []string{"previous"},
				Usage:   "Skip to the previous item",
				Flags:   []cli.Flag{deviceFlag()},
				Action:  r.PlayerPrevious,
			},
			{
				Name:      "add",
				Usage:     "Add a track or episode URI to the queue",
				ArgsUsage: "<uri>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "uri"},
				},
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerAdd,
			},
			{
				Name:  "watch",
				Usage: "Interactive now-playing view",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Polling interval",
						Value: ui.DefaultInterval,
					},
				},
				Action: r.PlayerWatch,
			},
		},
	}
}

// playlistCommand handles playlist reads and exports
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Read and export playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the current user's playlists",
				Flags:  []cli.Flag{limitFlag(), offsetFlag()},
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its first page of items",
				ArgsUsage: "<playlist-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:      "items",
				Usage:     "List playlist items",
				ArgsUsage: "<playlist-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					limitFlag(),
					offsetFlag(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Follow pagination and list every item",
					},
				},
				Action: r.PlaylistItems,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files (default: all of the current user's playlists)",
				ArgsUsage: "[playlist-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   tasks.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotify_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: 5,
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// meCommand handles the current user's profile and library
func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "The current user's profile and library",
		Commands: []*cli.Command{
			{
				Name:   "profile",
				Usage:  "Show the current user's profile",
				Action: r.MeProfile,
			},
			{
				Name:  "followed",
				Usage: "List followed artists",
				Flags: []cli.Flag{
					limitFlag(),
					&cli.StringFlag{
						Name:  "after",
						Usage: "Cursor: the last artist ID from the previous page",
					},
				},
				Action: r.MeFollowed,
			},
			{
				Name:  "top",
				Usage: "Show top tracks or artists",
				Commands: []*cli.Command{
					{
						Name:   "tracks",
						Usage:  "Top tracks",
						Flags:  []cli.Flag{timeRangeFlag(), limitFlag(), offsetFlag()},
						Action: r.MeTopTracks,
					},
					{
						Name:   "artists",
						Usage:  "Top artists",
						Flags:  []cli.Flag{timeRangeFlag(), limitFlag(), offsetFlag()},
						Action: r.MeTopArtists,
					},
				},
			},
			{
				Name:  "saved",
				Usage: "Show saved tracks or episodes",
				Commands: []*cli.Command{
					{
						Name:   "tracks",
						Usage:  "Saved tracks",
						Flags:  []cli.Flag{limitFlag(), offsetFlag()},
						Action: r.MeSavedTracks,
					},
					{
						Name:   "episodes",
						Usage:  "Saved episodes",
						Flags:  []cli.Flag{limitFlag(), offsetFlag()},
						Action: r.MeSavedEpisodes,
					},
				},
			},
		},
	}
}

func timeRangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short_term, medium_term, long_term",
		Value:   string(services.MediumTerm),
	}
}

// apiCommand handles raw authorized API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw authorized calls to the Web API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a path (e.g. /me/player) and print the JSON body",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIGet,
			},
		},
	}
}
