package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotx/internal/shared"
)

func (r *Runner) redirectURI() (*url.URL, error) {
	raw := strings.TrimSpace(r.config.Credentials.Spotify.RedirectURI)
	if raw == "" {
		return nil, shared.ErrMissingRedirectURI
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: redirect URI %q", shared.ErrConfiguration, raw)
	}
	return u, nil
}

// AuthURL prints the authorization URL and state for a manual flow finished with `auth exchange`.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	lc, err := r.requireAuth()
	if err != nil {
		return err
	}

	redirect, err := r.redirectURI()
	if err != nil {
		return err
	}

	var opts []oauth2.AuthCodeOption
	if cmd.Bool("show-dialog") {
		opts = append(opts, oauth2.SetAuthURLParam("show_dialog", "true"))
	}

	authURL, state, err := lc.AuthURL(redirect.String(), r.config.Credentials.Spotify.Scopes, cmd.String("state"), opts...)
	if err != nil {
		return err
	}

	store, err := r.tokenStore()
	if err != nil {
		return err
	}
	if err := lc.RememberState(ctx, store, state); err != nil {
		return fmt.Errorf("failed to remember state: %w", err)
	}

	if r.jsonOutput {
		return r.writeJSON(map[string]string{"url": authURL, "state": state}, true)
	}
	r.writePlain("%s\n", authURL)
	r.logger.Info("paste the redirect URL into `auth exchange`", "state", state)
	return nil
}

// authorizationCode returns arg itself, or the code and state carried by a pasted redirect URL. An "error" parameter
// in the URL is reported as a configuration failure.
func authorizationCode(arg string) (code, state string, err error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", "", fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}
	if !strings.Contains(arg, "://") {
		return arg, "", nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return "", "", fmt.Errorf("%w: redirect URL: %v", shared.ErrInvalidArgument, err)
	}

	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", "", fmt.Errorf("%w: authorization denied: %s", shared.ErrConfiguration, e)
	}
	if q.Get("code") == "" {
		return "", "", fmt.Errorf("%w: redirect URL has no code", shared.ErrMissingArgument)
	}
	return q.Get("code"), q.Get("state"), nil
}

// AuthExchange trades an authorization code for a token and stores it.
//
// A redirect URL's state is checked against the one saved by `auth url`, or against --state when given.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	lc, err := r.requireAuth()
	if err != nil {
		return err
	}

	code, returned, err := authorizationCode(cmd.StringArg("code"))
	if err != nil {
		return err
	}

	if want := cmd.String("state"); want != "" {
		if returned != "" && returned != want {
			return shared.ErrStateMismatch
		}
		returned = ""
	}

	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	tok, err := lc.ExchangeChecked(ctx, store, code, returned)
	if err != nil {
		return err
	}

	r.writePlain("✓ Authorization successful, token expires %s\n", tok.Expiry.Local().Format(time.RFC3339))
	return nil
}

// AuthRefresh forces a refresh of the access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	lc, err := r.requireAuth()
	if err != nil {
		return err
	}

	tok, err := lc.Refresh(ctx, cmd.String("refresh-token"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Token refreshed, expires %s\n", tok.Expiry.Local().Format(time.RFC3339))
	return nil
}

type authStatus struct {
	Authenticated bool      `json:"authenticated"`
	Expired       bool      `json:"expired"`
	Expiry        time.Time `json:"expiry,omitzero"`
	Scope         string    `json:"scope,omitempty"`
	CanRefresh    bool      `json:"can_refresh"`
}

// AuthStatus shows whether a token is stored and when it expires. Token values are never printed.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	lc, err := r.requireAuth()
	if err != nil {
		return err
	}

	tok := lc.Token()
	status := authStatus{
		Authenticated: !tok.IsZero(),
		Expired:       !tok.IsZero() && tok.Expired(time.Now()),
		Expiry:        tok.Expiry,
		Scope:         tok.Scope,
		CanRefresh:    tok.RefreshToken != "",
	}

	if r.jsonOutput {
		return r.writeJSON(status, true)
	}

	if !status.Authenticated {
		r.writePlain("Not logged in. Run `spotx auth url` then `spotx auth exchange`.\n")
		return nil
	}

	state := "valid"
	if status.Expired {
		state = "expired"
	}
	r.writePlain("Logged in (%s)\n", state)
	r.writePlain("  Expires:  %s\n", status.Expiry.Local().Format(time.RFC3339))
	r.writePlain("  Scope:    %s\n", status.Scope)
	r.writePlain("  Refresh:  %t\n", status.CanRefresh)
	return nil
}

// AuthLogout forgets the in-memory and stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	lc, err := r.requireAuth()
	if err != nil {
		return err
	}

	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	if err := lc.Forget(ctx, store); err != nil {
		return fmt.Errorf("failed to remove stored token: %w", err)
	}

	r.writePlain("✓ Logged out\n")
	return nil
}
