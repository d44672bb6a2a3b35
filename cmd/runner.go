package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/server"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/transport"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	jsonOutput bool

	registry *prometheus.Registry
	exec     *transport.Executor
	auth     *auth.Lifecycle
	client   *services.Client
	store    models.TokenStore
	closers  []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag when the command runs. A nil Store opens the configured database.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Store      models.TokenStore
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		store:      opts.Store,
		registry:   prometheus.NewRegistry(),
	}
}

// Before loads configuration and wires the client stack. It runs once, before any command action.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		if path := cmd.String("config"); path != "" {
			r.configPath = path
		}
		config, err := loadConfig(r.configPath, r.logger)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	envFile := cmd.String("env-file")
	if envFile == "" {
		if _, err := os.Stat(".env"); err == nil {
			envFile = ".env"
		}
	}
	if envFile != "" {
		env, err := shared.LoadEnvFile(envFile)
		if err != nil {
			return ctx, fmt.Errorf("%w: %v", shared.ErrConfiguration, err)
		}
		r.config.ApplyEnv(env)
	}

	level := cmd.String("log-level")
	if level == "" {
		level = r.config.Log.Level
	}
	lvl, err := shared.ParseLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, lvl)

	r.jsonOutput = cmd.Bool("json")

	if err := r.init(ctx); err != nil {
		return ctx, err
	}

	if addr := cmd.String("metrics-addr"); addr != "" {
		if err := r.serveMetrics(ctx, addr); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

// After releases the database and metrics listener.
func (r *Runner) After(context.Context, *cli.Command) error {
	return r.Close()
}

// Close releases every resource opened by the runner.
func (r *Runner) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

func loadConfig(path string, logger *log.Logger) (*shared.Config, error) {
	if path == "" {
		path = "config.toml"
	}

	config, err := shared.LoadConfig(path)
	if errors.Is(err, shared.ErrMissingConfig) {
		logger.Debug("config file not found, using defaults", "path", path)
		return shared.DefaultConfig(), nil
	}
	return config, err
}

// init builds the executor, token lifecycle and API client from the loaded config.
func (r *Runner) init(ctx context.Context) error {
	if r.client != nil {
		return nil
	}
	cfg := r.config

	client := r.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTP.Timeout()}
	}

	opts := []transport.Option{
		transport.WithLogger(shared.WithLogger(r.logger, "component", "transport")),
		transport.WithMetrics(transport.NewMetrics(r.registry)),
		transport.WithUserAgent(cfg.HTTP.UserAgent),
	}
	if cfg.HTTP.RateLimit > 0 {
		opts = append(opts, transport.WithRateLimit(cfg.HTTP.RateLimit))
	}
	r.exec = transport.NewExecutor(client, opts...)

	var tokens services.TokenProvider = services.StaticToken("")
	sp := cfg.Credentials.Spotify
	if creds, err := auth.NewCredentials(sp.ClientID, sp.ClientSecret); err == nil {
		r.auth = auth.New(creds, r.exec,
			auth.WithLogger(shared.WithLogger(r.logger, "component", "auth")),
			auth.WithAccountsURL(cfg.HTTP.AccountsURL),
			auth.WithRedirectURI(sp.RedirectURI),
		)

		store, err := r.tokenStore()
		if err != nil {
			return err
		}
		if err := r.auth.Attach(ctx, store); err != nil {
			return fmt.Errorf("failed to restore token: %w", err)
		}
		tokens = r.auth
	} else {
		r.logger.Debug("client credentials not configured")
	}

	r.client = services.NewClient(r.exec, tokens,
		services.WithBaseURL(cfg.HTTP.APIBaseURL),
		services.WithLogger(shared.WithLogger(r.logger, "component", "api")),
	)
	return nil
}

func (r *Runner) tokenStore() (models.TokenStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}
	r.closers = append(r.closers, db)
	r.store = repositories.NewTokenRepository(db)
	return r.store, nil
}

func (r *Runner) serveMetrics(ctx context.Context, addr string) error {
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.Recover(r.logger))
	router.Handler(server.NewMetricsHandler(r.registry))

	l, err := server.Listen(ctx, addr, router, r.logger)
	if err != nil {
		return err
	}
	r.closers = append(r.closers, l)
	r.logger.Info("serving metrics", "addr", l.Addr())
	return nil
}

// requireAuth returns the lifecycle, or [shared.ErrMissingCredentials] when no client credentials are configured.
func (r *Runner) requireAuth() (*auth.Lifecycle, error) {
	if r.auth == nil {
		return nil, fmt.Errorf("%w: set client_id and client_secret in %s or %s/%s in .env",
			shared.ErrMissingCredentials, r.configName(), shared.EnvClientID, shared.EnvClientSecret)
	}
	return r.auth, nil
}

func (r *Runner) configName() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

// render writes v as JSON when --json is set and calls table otherwise.
func (r *Runner) render(v any, table func(w io.Writer)) error {
	if r.jsonOutput {
		return formatter.PrintJSON(r.output, v)
	}
	table(r.output)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
