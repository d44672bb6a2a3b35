package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotx/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newApp(runner).Run(ctx, os.Args)
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("cleanup failed", "err", cerr)
	}

	if err != nil {
		logger.Error(describeError(err))
		logger.Debug("error detail", "err", err)
		os.Exit(exitCode(err))
	}
}

// describeError maps a failure onto a short user-facing message by kind.
func describeError(err error) string {
	var rl *shared.RateLimitError
	var apiErr *shared.APIError
	var decodeErr *shared.DecodeError

	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &rl):
		return fmt.Sprintf("rate limited by Spotify, retry in %s", rl.RetryAfter)
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "not logged in: run `spotx auth url` and then `spotx auth exchange`"
	case errors.Is(err, shared.ErrNoRefreshToken):
		return "session expired and no refresh token is stored: authorize again with `spotx auth url`"
	case errors.Is(err, shared.ErrConfiguration):
		return fmt.Sprintf("configuration error: %v", err)
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "no message"
		}
		return fmt.Sprintf("Spotify rejected the request (status %d): %s", apiErr.Status, msg)
	case errors.Is(err, shared.ErrNetwork):
		return fmt.Sprintf("could not reach Spotify: %v", err)
	case errors.As(err, &decodeErr):
		return fmt.Sprintf("unexpected response from Spotify: %s", decodeErr.Msg)
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
		return err.Error()
	}
	return fmt.Sprintf("error: %v", err)
}

// exitCode is 2 for usage and configuration problems and 1 for everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, shared.ErrConfiguration),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return 2
	}
	return 1
}
