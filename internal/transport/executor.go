// Package transport performs single HTTP calls against the Spotify accounts and Web API hosts.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spotx/internal/shared"
)

// Default hosts.
const (
	APIBaseURL      = "https://api.spotify.com/v1"
	AccountsBaseURL = "https://accounts.spotify.com"
)

// BasicAuth holds client credentials sent as an HTTP Basic Authorization header.
type BasicAuth struct {
	Username string
	Password string
}

// Request describes one outbound call. At most one of Bearer and Basic should be set; when Basic is set no bearer
// token is sent.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Bearer      string
	Basic       *BasicAuth
	Header      http.Header
}

// RawResult is a completed exchange. Non-2xx statuses are results too; mapping them to errors is the caller's job.
type RawResult struct {
	Status int
	Header http.Header
	Body   []byte
}

// NoContent reports a 204, or a 200 with an empty body. Such a result carries no data and must not be decoded.
func (r *RawResult) NoContent() bool {
	if r.Status == http.StatusNoContent {
		return true
	}
	return r.Status == http.StatusOK && len(bytes.TrimSpace(r.Body)) == 0
}

// Executor issues HTTP calls. It is safe for concurrent use.
type Executor struct {
	client    *http.Client
	logger    *log.Logger
	limiter   *rate.Limiter
	metrics   *Metrics
	userAgent string
}

// Option configures an [Executor].
type Option func(*Executor)

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRateLimit paces outbound calls to rps requests per second. Zero or negative disables pacing.
func WithRateLimit(rps float64) Option {
	return func(e *Executor) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			e.limiter = nil
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithUserAgent sets the User-Agent header sent on every call.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// NewExecutor creates an executor around client. A nil client uses [http.DefaultClient]; timeouts belong on the client.
func NewExecutor(client *http.Client, opts ...Option) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client:    client,
		logger:    shared.DiscardLogger(),
		userAgent: "spotx",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs req and returns the raw status, headers and body.
//
// Any failure to complete the exchange (DNS, connect, TLS, timeout, cancellation, or a truncated body) is returned as
// a [shared.NetworkError]. Application-level statuses are never turned into errors here.
func (e *Executor) Execute(ctx context.Context, req Request) (*RawResult, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, &shared.NetworkError{Op: method, URL: req.URL, Err: err}
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrConfiguration, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("User-Agent", e.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	switch {
	case req.Basic != nil:
		httpReq.SetBasicAuth(req.Basic.Username, req.Basic.Password)
	case req.Bearer != "":
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.metrics.observe(method, 0, time.Since(start))
		e.logger.Debug("request failed", "method", method, "url", req.URL, "err", err)
		return nil, &shared.NetworkError{Op: method, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.observe(method, 0, elapsed)
		e.logger.Debug("reading response failed", "method", method, "url", req.URL, "status", resp.StatusCode, "err", err)
		return nil, &shared.NetworkError{Op: method, URL: req.URL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	e.metrics.observe(method, resp.StatusCode, elapsed)
	e.logger.Debug("request", "method", method, "url", req.URL, "status", resp.StatusCode, "bytes", len(data), "elapsed", elapsed)

	return &RawResult{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
