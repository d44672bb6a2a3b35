package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	tu "github.com/desertthunder/spotx/internal/testing"
)

const stateJSON = `{"device":{"id":"d1","name":"Kitchen","type":"Speaker","volume_percent":40,"is_active":true},
	"repeat_state":"off","shuffle_state":false,"progress_ms":60000,"is_playing":true,"currently_playing_type":"track",
	"item":{"type":"track","id":"t1","name":"Song","uri":"spotify:track:t1","duration_ms":180000,
	"artists":[{"id":"a1","name":"Artist"}],"album":{"id":"al1","name":"Album"}}}`

// fakeSpotify serves the accounts and API endpoints the commands touch and records the calls it saw.
type fakeSpotify struct {
	mu    sync.Mutex
	calls []string
	srv   *httptest.Server
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()

	f := &fakeSpotify{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "POST /api/token":
			io.WriteString(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600,"scope":"user-read-private"}`)
		case "GET /me":
			io.WriteString(w, `{"id":"u1","display_name":"Tester","product":"premium","followers":{"total":3}}`)
		case "GET /me/player":
			if r.Header.Get("Authorization") == "Bearer idle" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			io.WriteString(w, stateJSON)
		case "PUT /me/player/pause":
			w.WriteHeader(http.StatusNoContent)
		case "GET /me/player/devices":
			io.WriteString(w, `{"devices":[{"id":"d1","name":"Kitchen","type":"Speaker","is_active":true}]}`)
		case "GET /me/top/tracks":
			w.Header().Set("Retry-After", "9")
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error":{"status":429,"message":"API rate limit exceeded"}}`)
		case "GET /playlists/p1":
			io.WriteString(w, `{"id":"p1","name":"Mix","public":true,"owner":{"id":"o1","display_name":"Owner"},
				"tracks":{"href":"","items":[{"added_at":"2024-01-01T00:00:00Z","track":{"type":"episode","id":"e1",
				"name":"Episode","uri":"spotify:episode:e1","duration_ms":1000,"show":{"id":"s1","name":"Show"}}}],
				"limit":100,"offset":0,"total":1,"next":null,"previous":null}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"status":404,"message":"Service not found"}}`)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSpotify) saw(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func testConfig(baseURL string) *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "test_id"
	config.Credentials.Spotify.ClientSecret = "test_secret"
	config.HTTP.APIBaseURL = baseURL
	config.HTTP.AccountsURL = baseURL
	config.HTTP.RateLimit = 0
	config.Log.Level = "error"
	return config
}

// runApp runs args against a runner wired to f with tok stored, and returns stdout.
func runApp(t *testing.T, f *fakeSpotify, tok models.Token, args ...string) (string, error) {
	t.Helper()

	store := tu.NewMemoryTokenStore()
	if !tok.IsZero() {
		store.Save(context.Background(), "test_id", tok)
	}
	return runWithStore(t, f, store, args...)
}

// runWithStore is runApp for tests that need the store to outlive a single command.
func runWithStore(t *testing.T, f *fakeSpotify, store models.TokenStore, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Config: testConfig(f.srv.URL),
		Logger: shared.DiscardLogger(),
		Output: out,
		Store:  store,
	})

	err := newApp(r).Run(context.Background(), append([]string{"spotx"}, args...))
	return out.String(), err
}

func validToken(access string) models.Token {
	return models.Token{AccessToken: access, RefreshToken: "r1", Expiry: time.Now().Add(time.Hour)}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			store := tu.NewMemoryTokenStore()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Store:      store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("init", func(t *testing.T) {
		t.Run("restores the stored token", func(t *testing.T) {
			store := tu.NewMemoryTokenStore()
			store.Save(context.Background(), "test_id", validToken("stored"))

			runner := NewRunner(RunnerOpts{Config: testConfig("http://127.0.0.1:1"), Store: store})
			if err := runner.init(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !runner.auth.Authenticated() {
				t.Error("expected lifecycle to be authenticated from the store")
			}
		})

		t.Run("without credentials", func(t *testing.T) {
			config := testConfig("http://127.0.0.1:1")
			config.Credentials.Spotify.ClientID = ""

			runner := NewRunner(RunnerOpts{Config: config})
			if err := runner.init(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if _, err := runner.requireAuth(); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected missing credentials, got %v", err)
			}

			if _, err := runner.client.Me(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected not authenticated, got %v", err)
			}
		})

		t.Run("opens the configured database", func(t *testing.T) {
			config := testConfig("http://127.0.0.1:1")
			config.Database.Path = filepath.Join(t.TempDir(), "spotx.db")

			runner := NewRunner(RunnerOpts{Config: config})
			if err := runner.init(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer runner.Close()

			tu.AssertFileExists(t, config.Database.Path)
		})
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads config and env file", func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.toml")
			envPath := filepath.Join(dir, ".env")

			if err := shared.CreateConfigFile(configPath); err != nil {
				t.Fatalf("failed to create config: %v", err)
			}
			os.WriteFile(envPath, []byte("SPOTIFY_CLIENT_ID=env_id\nSPOTIFY_CLIENT_SECRET=env_secret\n"), 0600)

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.DiscardLogger(), Store: tu.NewMemoryTokenStore()})
			err := newApp(runner).Run(context.Background(), []string{
				"spotx", "--config", configPath, "--env-file", envPath, "auth", "status",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Credentials.Spotify.ClientID != "env_id" {
				t.Errorf("expected env overlay, got %q", runner.config.Credentials.Spotify.ClientID)
			}
		})

		t.Run("rejects unknown log level", func(t *testing.T) {
			f := newFakeSpotify(t)
			_, err := runApp(t, f, models.Token{}, "--log-level", "loud", "auth", "status")

			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	})

	t.Run("render", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.jsonOutput = true

		if err := runner.render(map[string]int{"n": 1}, func(io.Writer) { t.Error("table should not render") }); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), `"n": 1`) {
			t.Errorf("expected JSON, got %q", output.String())
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "player", "playlist", "me", "api"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("player status", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "player", "status")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, "Playing: Artist - Song [1:00 / 3:00]") || !strings.Contains(out, "Kitchen") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("player status with nothing playing", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("idle"), "player", "status")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, "Nothing playing") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("player status as JSON when idle", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("idle"), "--json", "player", "status")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if strings.TrimSpace(out) != "null" {
			t.Errorf("expected null, got %q", out)
		}
	})

	t.Run("player pause", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "player", "pause")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !f.saw("PUT /me/player/pause") || !strings.Contains(out, "✓ pause") {
			t.Errorf("expected pause call, got %v / %q", f.calls, out)
		}
	})

	t.Run("player devices", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "player", "devices")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, "● Active") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("player add rejects bare IDs", func(t *testing.T) {
		f := newFakeSpotify(t)
		_, err := runApp(t, f, validToken("a1"), "player", "add", "t1")

		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})

	t.Run("expired token is refreshed first", func(t *testing.T) {
		f := newFakeSpotify(t)
		tok := models.Token{AccessToken: "old", RefreshToken: "r1", Expiry: time.Now().Add(-time.Minute)}

		out, err := runApp(t, f, tok, "me", "profile")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !f.saw("POST /api/token") || !strings.Contains(out, "Tester") {
			t.Errorf("expected refresh then profile, got %v / %q", f.calls, out)
		}
	})

	t.Run("not logged in", func(t *testing.T) {
		f := newFakeSpotify(t)
		_, err := runApp(t, f, models.Token{}, "me", "profile")

		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected not authenticated, got %v", err)
		}

		if len(f.calls) != 0 {
			t.Errorf("expected no requests, got %v", f.calls)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		f := newFakeSpotify(t)
		_, err := runApp(t, f, validToken("a1"), "me", "top", "tracks")

		var rl *shared.RateLimitError
		if !errors.As(err, &rl) || rl.RetryAfter != 9*time.Second {
			t.Fatalf("expected rate limit with 9s, got %v", err)
		}

		if msg := describeError(err); !strings.Contains(msg, "9s") {
			t.Errorf("expected retry delay in message, got %q", msg)
		}
	})

	t.Run("playlist show", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "playlist", "show", "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, "Mix by Owner (Public)") || !strings.Contains(out, "episode") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("playlist export", func(t *testing.T) {
		f := newFakeSpotify(t)
		dir := t.TempDir()

		_, err := runApp(t, f, validToken("a1"), "playlist", "export", "--format", "csv", "--output", dir, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "p1_tracks.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})

	t.Run("auth status", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "--json", "auth", "status")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, `"authenticated": true`) || strings.Contains(out, "a1") {
			t.Errorf("expected status without token values, got %q", out)
		}
	})

	t.Run("auth refresh", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "auth", "refresh")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, "Token refreshed") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("auth url", func(t *testing.T) {
		f := newFakeSpotify(t)
		store := tu.NewMemoryTokenStore()
		out, err := runWithStore(t, f, store, "--json", "auth", "url", "--state", "s1", "--show-dialog")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, "show_dialog=true") || !strings.Contains(out, `"state": "s1"`) {
			t.Errorf("unexpected output %q", out)
		}

		if state, err := store.LoadState(context.Background(), "test_id"); err != nil || state != "s1" {
			t.Errorf("expected state s1 to be saved, got %q (%v)", state, err)
		}
	})

	t.Run("auth exchange checks the saved state", func(t *testing.T) {
		f := newFakeSpotify(t)
		store := tu.NewMemoryTokenStore()
		if _, err := runWithStore(t, f, store, "auth", "url"); err != nil {
			t.Fatalf("auth url failed: %v", err)
		}

		saved, _ := store.LoadState(context.Background(), "test_id")
		if saved == "" {
			t.Fatal("expected a generated state to be saved")
		}

		_, err := runWithStore(t, f, store, "auth", "exchange", "http://127.0.0.1:3000/callback?code=c1&state=forged")
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Fatalf("expected state mismatch, got %v", err)
		}
		if f.saw("POST /api/token") {
			t.Fatal("expected no token request on mismatch")
		}

		out, err := runWithStore(t, f, store, "auth", "exchange", "http://127.0.0.1:3000/callback?code=c1&state="+saved)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Authorization successful") {
			t.Errorf("unexpected output %q", out)
		}

		if _, err := store.LoadState(context.Background(), "test_id"); !errors.Is(err, models.ErrStateNotFound) {
			t.Errorf("expected the pending state to be consumed, got %v", err)
		}
	})

	t.Run("auth exchange without a pending state", func(t *testing.T) {
		f := newFakeSpotify(t)
		_, err := runApp(t, f, models.Token{}, "auth", "exchange", "http://127.0.0.1:3000/callback?code=c1&state=s1")

		if !errors.Is(err, shared.ErrStateMismatch) || len(f.calls) != 0 {
			t.Errorf("expected state mismatch without requests, got %v / %v", err, f.calls)
		}
	})

	t.Run("auth exchange with redirect URL", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, models.Token{}, "auth", "exchange", "--state", "s1",
			"http://127.0.0.1:3000/callback?code=c1&state=s1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !f.saw("POST /api/token") || !strings.Contains(out, "Authorization successful") {
			t.Errorf("expected token exchange, got %v / %q", f.calls, out)
		}
	})

	t.Run("auth exchange state mismatch", func(t *testing.T) {
		f := newFakeSpotify(t)
		_, err := runApp(t, f, models.Token{}, "auth", "exchange", "--state", "s1",
			"http://127.0.0.1:3000/callback?code=c1&state=other")

		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
		if len(f.calls) != 0 {
			t.Errorf("expected no requests, got %v", f.calls)
		}
	})

	t.Run("api get", func(t *testing.T) {
		f := newFakeSpotify(t)
		out, err := runApp(t, f, validToken("a1"), "api", "get", "/me")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out, `"display_name": "Tester"`) {
			t.Errorf("expected indented body, got %q", out)
		}
	})

	t.Run("api get error", func(t *testing.T) {
		f := newFakeSpotify(t)
		_, err := runApp(t, f, validToken("a1"), "api", "get", "/nope")

		var apiErr *shared.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected 404 API error, got %v", err)
		}
	})
}

func TestAuthorizationCode(t *testing.T) {
	tests := []struct {
		name  string
		arg   string
		code  string
		state string
		err   error
	}{
		{"bare code", " c1 ", "c1", "", nil},
		{"redirect URL", "http://127.0.0.1:3000/callback?code=c1&state=s1", "c1", "s1", nil},
		{"redirect URL without state", "http://127.0.0.1:3000/callback?code=c1", "c1", "", nil},
		{"denied", "http://127.0.0.1:3000/callback?error=access_denied", "", "", shared.ErrConfiguration},
		{"no code", "http://127.0.0.1:3000/callback?state=s1", "", "", shared.ErrMissingArgument},
		{"empty", "", "", "", shared.ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, state, err := authorizationCode(tt.arg)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if code != tt.code || state != tt.state {
				t.Errorf("expected %q/%q, got %q/%q", tt.code, tt.state, code, state)
			}
		})
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		code int
	}{
		{"not authenticated", shared.ErrNotAuthenticated, "spotx auth exchange", 2},
		{"missing credentials", shared.ErrMissingCredentials, "configuration error", 2},
		{"api", &shared.APIError{Status: 403, Message: "Premium required"}, "status 403): Premium required", 1},
		{"network", &shared.NetworkError{Op: "GET", URL: "u", Err: errors.New("refused")}, "could not reach Spotify", 1},
		{"decode", &shared.DecodeError{Msg: "body is not JSON"}, "body is not JSON", 1},
		{"argument", shared.ErrMissingArgument, "missing required argument", 2},
		{"other", errors.New("boom"), "error: boom", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeError(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}

			if got := exitCode(tt.err); got != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, got)
			}
		})
	}
}
