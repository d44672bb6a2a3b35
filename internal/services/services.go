// package services defines the Spotify API client and its fetch primitives
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/transport"
)

// Page size bounds accepted by the Web API.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// TokenProvider supplies a valid bearer token for each call.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a [TokenProvider] that always returns the same token.
type StaticToken string

func (s StaticToken) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", shared.ErrNotAuthenticated
	}
	return string(s), nil
}

// Client is the Spotify Web API client. It holds no per-call state and is safe for concurrent use.
type Client struct {
	exec    *transport.Executor
	tokens  TokenProvider
	baseURL string
	logger  *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the Web API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client that authorizes calls with tokens and performs them with exec.
func NewClient(exec *transport.Executor, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		exec:    exec,
		tokens:  tokens,
		baseURL: transport.APIBaseURL,
		logger:  shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL resolves path against the base URL. Absolute URLs, such as a page's "next" link, are returned unchanged.
func (c *Client) URL(path string, query url.Values) string {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		u = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// Do performs an authorized call and maps non-2xx results to errors. A non-nil body is sent as JSON.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*transport.RawResult, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req := transport.Request{Method: method, URL: c.URL(path, query), Bearer: token}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrConfiguration, err)
		}
		req.Body = data
		req.ContentType = "application/json"
	}

	res, err := c.exec.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := shared.CheckResponse(method, req.URL, res.Status, res.Header, res.Body); err != nil {
		c.logger.Debug("request rejected", "method", method, "url", req.URL, "err", err)
		return nil, err
	}
	return res, nil
}

// Send performs a call whose response carries no data, such as a player command.
func (c *Client) Send(ctx context.Context, method, path string, query url.Values, body any) error {
	_, err := c.Do(ctx, method, path, query, body)
	return err
}

// get performs a GET and parses the body. ok is false for a no-content result.
func (c *Client) get(ctx context.Context, path string, query url.Values) (codec.Object, bool, error) {
	res, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, false, err
	}
	if res.NoContent() {
		return nil, false, nil
	}

	o, err := codec.Parse(res.Body)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// Fetch decodes a required object from GET path. A no-content result is a [shared.DecodeError].
func Fetch[T any](ctx context.Context, c *Client, path string, query url.Values, decode codec.Decoder[T]) (T, error) {
	var zero T
	o, ok, err := c.get(ctx, path, query)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, &shared.DecodeError{Msg: fmt.Sprintf("empty body from %s where data was expected", path)}
	}
	return decode(o), nil
}

// FetchOptional decodes an object that may be absent. A no-content result is returned as not set.
func FetchOptional[T any](ctx context.Context, c *Client, path string, query url.Values, decode codec.Decoder[T]) (codec.Optional[T], error) {
	o, ok, err := c.get(ctx, path, query)
	if err != nil || !ok {
		return codec.None[T](), err
	}
	return codec.Some(decode(o)), nil
}

// FetchWrapped decodes the object stored under key, for responses such as {"artists": {...}}.
func FetchWrapped[T any](ctx context.Context, c *Client, path string, query url.Values, key string, decode codec.Decoder[T]) (T, error) {
	return Fetch(ctx, c, path, query, func(o codec.Object) T {
		return codec.Nested(o, key, decode)
	})
}

// FetchPage decodes a paging envelope of T.
func FetchPage[T any](ctx context.Context, c *Client, path string, query url.Values, decode codec.Decoder[T]) (codec.Envelope[T], error) {
	env, err := Fetch(ctx, c, path, query, codec.EnvelopeDecoder(decode))
	if err != nil {
		return env, err
	}
	c.warnSkipped(path, env.Skipped)
	return env, nil
}

func (c *Client) warnSkipped(path string, n int) {
	if n > 0 {
		c.logger.Warn("skipped malformed items", "path", path, "count", n)
	}
}

// ClampLimit bounds a page size to the API's accepted range.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// PageQuery builds limit/offset query parameters.
func PageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(ClampLimit(limit)))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}
