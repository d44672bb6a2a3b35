package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)

	t.Run("Save And Load", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		tok := models.Token{AccessToken: "a", TokenType: "Bearer", Scope: "user-read-private", RefreshToken: "r", Expiry: expiry}

		if err := repo.Save(ctx, "client", tok); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		got, err := repo.Load(ctx, "client")
		if err != nil {
			t.Fatalf("failed to load token: %v", err)
		}

		if got.AccessToken != "a" || got.RefreshToken != "r" || got.Scope != "user-read-private" || got.TokenType != "Bearer" {
			t.Errorf("unexpected token %+v", got)
		}

		if !got.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %s, got %s", expiry, got.Expiry)
		}
	})

	t.Run("Save Replaces", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		repo.Save(ctx, "client", models.Token{AccessToken: "old", Expiry: expiry})
		if err := repo.Save(ctx, "client", models.Token{AccessToken: "new", RefreshToken: "r2", Expiry: expiry.Add(time.Hour)}); err != nil {
			t.Fatalf("failed to replace token: %v", err)
		}

		got, _ := repo.Load(ctx, "client")
		if got.AccessToken != "new" || got.RefreshToken != "r2" {
			t.Errorf("expected replaced token, got %+v", got)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM tokens").Scan(&count); err != nil || count != 1 {
			t.Errorf("expected one row, got %d (%v)", count, err)
		}
	})

	t.Run("Load Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewTokenRepository(db).Load(ctx, "nobody"); !errors.Is(err, models.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		repo.Save(ctx, "client", models.Token{AccessToken: "a", Expiry: expiry})

		if err := repo.Delete(ctx, "client"); err != nil {
			t.Fatalf("failed to delete token: %v", err)
		}

		if _, err := repo.Load(ctx, "client"); !errors.Is(err, models.ErrTokenNotFound) {
			t.Errorf("expected token to be gone, got %v", err)
		}

		if err := repo.Delete(ctx, "client"); err != nil {
			t.Errorf("expected deleting a missing token to succeed, got %v", err)
		}
	})

	t.Run("Requires Client ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewTokenRepository(db).Save(ctx, "", models.Token{}); err == nil {
			t.Error("expected error for empty client id")
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		repo := NewTokenRepository(db)
		if err := repo.Save(ctx, "client", models.Token{AccessToken: "a"}); err == nil {
			t.Error("expected error saving to a closed database")
		}

		if _, err := repo.Load(ctx, "client"); err == nil || errors.Is(err, models.ErrTokenNotFound) {
			t.Errorf("expected query error, got %v", err)
		}
	})

	t.Run("Pending State", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		if _, err := repo.LoadState(ctx, "client"); !errors.Is(err, models.ErrStateNotFound) {
			t.Fatalf("expected ErrStateNotFound, got %v", err)
		}

		repo.SaveState(ctx, "client", "first")
		if err := repo.SaveState(ctx, "client", "second"); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}

		if got, err := repo.LoadState(ctx, "client"); err != nil || got != "second" {
			t.Errorf("expected latest state, got %q (%v)", got, err)
		}

		if err := repo.ClearState(ctx, "client"); err != nil {
			t.Fatalf("failed to clear state: %v", err)
		}

		if _, err := repo.LoadState(ctx, "client"); !errors.Is(err, models.ErrStateNotFound) {
			t.Errorf("expected state to be gone, got %v", err)
		}
	})
}
