// package models defines the data model for the Spotify client
package models

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTokenNotFound is returned by [TokenStore.Load] when no token is stored for a client.
	ErrTokenNotFound = errors.New("token not found")
	// ErrStateNotFound is returned by [StateStore.LoadState] when no authorization is pending.
	ErrStateNotFound = errors.New("no pending authorization state")
)

// Token is the OAuth token state for one client. It is replaced wholesale by every exchange or refresh.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// IsZero reports whether no access token has been obtained.
func (t Token) IsZero() bool {
	return t.AccessToken == ""
}

// Expired reports whether the token has expired at now. A token is expired from its expiry instant onwards.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// StateStore keeps the OAuth state issued by the last authorize URL until the matching exchange consumes it.
type StateStore interface {
	SaveState(ctx context.Context, clientID, state string) error   // SaveState replaces the pending state
	LoadState(ctx context.Context, clientID string) (string, error) // LoadState returns the pending state
	ClearState(ctx context.Context, clientID string) error          // ClearState removes the pending state, if any
}

// TokenStore persists token state across runs, keyed by client id.
// Load returns [ErrTokenNotFound] when nothing is stored.
type TokenStore interface {
	Save(ctx context.Context, clientID string, tok Token) error // Save inserts or replaces the stored token
	Load(ctx context.Context, clientID string) (Token, error)   // Load retrieves the stored token
	Delete(ctx context.Context, clientID string) error          // Delete removes the stored token, if any
	StateStore
}
