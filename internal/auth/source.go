package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

type tokenSource struct {
	ctx context.Context
	l   *Lifecycle
}

// TokenSource adapts the lifecycle to [oauth2.TokenSource]. Each Token call goes through [Lifecycle.AccessToken], so
// expired tokens are refreshed the same way as for typed calls.
func (l *Lifecycle) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, l: l}
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.l.validToken(s.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// HTTPClient returns an [http.Client] that authorizes every request with the lifecycle's bearer token.
func (l *Lifecycle) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, l.TokenSource(ctx))
}

// Attach restores the token stored for these credentials, if any, and saves every later update to store.
func (l *Lifecycle) Attach(ctx context.Context, store models.TokenStore) error {
	tok, err := store.Load(ctx, l.creds.ClientID)
	switch {
	case errors.Is(err, models.ErrTokenNotFound):
		l.logger.Debug("no stored token", "client_id", l.creds.ClientID)
	case err != nil:
		return err
	default:
		l.Restore(tok)
	}

	l.OnUpdate(func(tok models.Token) {
		if err := store.Save(context.Background(), l.creds.ClientID, tok); err != nil {
			l.logger.Error("failed to persist token", "err", err)
		}
	})
	return nil
}

// Forget clears the in-memory token and removes the stored token and any pending state.
func (l *Lifecycle) Forget(ctx context.Context, store models.TokenStore) error {
	l.Reset()
	return errors.Join(store.Delete(ctx, l.creds.ClientID), store.ClearState(ctx, l.creds.ClientID))
}

// RememberState records state as the one the next [Lifecycle.ExchangeChecked] expects.
func (l *Lifecycle) RememberState(ctx context.Context, store models.StateStore, state string) error {
	return store.SaveState(ctx, l.creds.ClientID, state)
}

// ExchangeChecked compares returned with the pending state in store, exchanges code, and clears the pending state on
// success. An empty returned skips the comparison. A mismatch or a missing pending state is
// [shared.ErrStateMismatch] and nothing is sent.
func (l *Lifecycle) ExchangeChecked(ctx context.Context, store models.StateStore, code, returned string) (models.Token, error) {
	if returned != "" {
		want, err := store.LoadState(ctx, l.creds.ClientID)
		switch {
		case errors.Is(err, models.ErrStateNotFound):
			return models.Token{}, fmt.Errorf("%w: no authorization is pending, run `auth url` first", shared.ErrStateMismatch)
		case err != nil:
			return models.Token{}, err
		case want != returned:
			return models.Token{}, shared.ErrStateMismatch
		}
	}

	tok, err := l.Exchange(ctx, code)
	if err != nil {
		return models.Token{}, err
	}

	if err := store.ClearState(ctx, l.creds.ClientID); err != nil {
		l.logger.Warn("failed to clear pending state", "err", err)
	}
	return tok, nil
}
