package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotx/internal/shared"
)

// APIGet performs an authorized GET through the lifecycle's oauth2 client and prints the body.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	lc, err := r.requireAuth()
	if err != nil {
		return err
	}
	if !lc.Authenticated() {
		return shared.ErrNotAuthenticated
	}

	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return fmt.Errorf("%w: API path", shared.ErrMissingArgument)
	}
	target := r.client.URL(path, nil)

	r.logger.Debug("GET request", "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	resp, err := lc.HTTPClient(ctx).Do(req)
	if err != nil {
		return &shared.NetworkError{Op: http.MethodGet, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &shared.NetworkError{Op: http.MethodGet, URL: target, Err: err}
	}

	if err := shared.CheckResponse(http.MethodGet, target, resp.StatusCode, resp.Header, body); err != nil {
		return err
	}

	if len(body) == 0 {
		return r.writePlain("(no content, status %d)\n", resp.StatusCode)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		out.Reset()
		out.Write(body)
	}
	out.WriteByte('\n')

	if _, err := r.output.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
