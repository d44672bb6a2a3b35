package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/models"
)

// TokenRepository implements [models.TokenStore] on the tokens table.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save inserts or replaces the token stored for clientID.
func (r *TokenRepository) Save(ctx context.Context, clientID string, tok models.Token) error {
	if clientID == "" {
		return fmt.Errorf("client id is required")
	}

	query := `
		INSERT INTO tokens (client_id, access_token, token_type, scope, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		clientID, tok.AccessToken, tok.TokenType, tok.Scope, tok.RefreshToken, tok.Expiry.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load retrieves the token stored for clientID, or [models.ErrTokenNotFound].
func (r *TokenRepository) Load(ctx context.Context, clientID string) (models.Token, error) {
	query := `
		SELECT access_token, token_type, scope, refresh_token, expires_at
		FROM tokens
		WHERE client_id = ?
	`

	var tok models.Token
	err := r.db.QueryRowContext(ctx, query, clientID).
		Scan(&tok.AccessToken, &tok.TokenType, &tok.Scope, &tok.RefreshToken, &tok.Expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Token{}, models.ErrTokenNotFound
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to query token: %w", err)
	}

	tok.Expiry = tok.Expiry.UTC()
	return tok, nil
}

// Delete removes the token stored for clientID. Deleting a missing token is not an error.
func (r *TokenRepository) Delete(ctx context.Context, clientID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE client_id = ?", clientID); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// SaveState records state as the pending authorization state for clientID, replacing any earlier one.
func (r *TokenRepository) SaveState(ctx context.Context, clientID, state string) error {
	if clientID == "" {
		return fmt.Errorf("client id is required")
	}

	query := `
		INSERT INTO auth_states (client_id, state, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			state = excluded.state,
			created_at = excluded.created_at
	`

	if _, err := r.db.ExecContext(ctx, query, clientID, state, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// LoadState returns the pending authorization state for clientID, or [models.ErrStateNotFound].
func (r *TokenRepository) LoadState(ctx context.Context, clientID string) (string, error) {
	var state string
	err := r.db.QueryRowContext(ctx, "SELECT state FROM auth_states WHERE client_id = ?", clientID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query state: %w", err)
	}
	return state, nil
}

func (r *TokenRepository) ClearState(ctx context.Context, clientID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM auth_states WHERE client_id = ?", clientID); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
