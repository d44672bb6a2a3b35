// Package auth implements the Spotify OAuth2 authorization-code flow and the token lifecycle.
//
// A [Lifecycle] starts unauthenticated. [Lifecycle.Exchange] or [Lifecycle.Restore] make it authenticated, and
// [Lifecycle.AccessToken] refreshes transparently once the token has expired. Every successful exchange or refresh
// replaces the whole token record; failures leave it untouched.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/transport"
)

const (
	authorizePath = "/authorize"
	tokenPath     = "/api/token"
	formEncoded   = "application/x-www-form-urlencoded"
)

// Credentials are the application's client id and secret.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// NewCredentials validates and returns client credentials. Both values are required.
func NewCredentials(clientID, clientSecret string) (Credentials, error) {
	clientID, clientSecret = strings.TrimSpace(clientID), strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return Credentials{}, shared.ErrMissingCredentials
	}
	return Credentials{ClientID: clientID, ClientSecret: clientSecret}, nil
}

// Lifecycle owns the token state for one set of credentials. It is safe for concurrent use.
type Lifecycle struct {
	creds       Credentials
	exec        *transport.Executor
	accountsURL string
	now         func() time.Time
	logger      *log.Logger

	mu          sync.Mutex
	token       models.Token
	redirectURI string
	onUpdate    []func(models.Token)
}

// Option configures a [Lifecycle].
type Option func(*Lifecycle)

// WithClock replaces time.Now for expiry computation and checks.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) { l.now = now }
}

// WithLogger sets the logger used for token events.
func WithLogger(logger *log.Logger) Option {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithAccountsURL points the lifecycle at a different accounts host.
func WithAccountsURL(base string) Option {
	return func(l *Lifecycle) {
		if base != "" {
			l.accountsURL = strings.TrimRight(base, "/")
		}
	}
}

// WithRedirectURI sets the redirect URI used by [Lifecycle.Exchange] without building an authorize URL first.
func WithRedirectURI(uri string) Option {
	return func(l *Lifecycle) { l.redirectURI = uri }
}

// New creates an unauthenticated lifecycle.
func New(creds Credentials, exec *transport.Executor, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		creds:       creds,
		exec:        exec,
		accountsURL: transport.AccountsBaseURL,
		now:         time.Now,
		logger:      shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lifecycle) oauthConfig(redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     l.creds.ClientID,
		ClientSecret: l.creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   l.accountsURL + authorizePath,
			TokenURL:  l.accountsURL + tokenPath,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// AuthURL builds the URL the user visits to grant access and remembers redirectURI for the following exchange.
// An empty state is replaced by a generated one; the state actually used is returned.
func (l *Lifecycle) AuthURL(redirectURI string, scopes []string, state string, opts ...oauth2.AuthCodeOption) (string, string, error) {
	if strings.TrimSpace(redirectURI) == "" {
		return "", "", shared.ErrMissingRedirectURI
	}
	if state == "" {
		state = shared.GenerateState()
	}

	l.mu.Lock()
	l.redirectURI = redirectURI
	l.mu.Unlock()

	return l.oauthConfig(redirectURI, scopes).AuthCodeURL(state, opts...), state, nil
}

// Exchange trades an authorization code for a token and makes the lifecycle authenticated.
func (l *Lifecycle) Exchange(ctx context.Context, code string) (models.Token, error) {
	if strings.TrimSpace(code) == "" {
		return models.Token{}, shared.ErrMissingCode
	}

	l.mu.Lock()
	if l.redirectURI == "" {
		l.mu.Unlock()
		return models.Token{}, shared.ErrMissingRedirectURI
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", l.redirectURI)

	tok, err := l.requestToken(ctx, form, models.Token{})
	if err != nil {
		l.mu.Unlock()
		return models.Token{}, err
	}
	l.token = tok
	callbacks := l.callbacks()
	l.mu.Unlock()

	l.logger.Info("authorization code exchanged", "expires", tok.Expiry.Format(time.RFC3339), "scope", tok.Scope)
	notify(callbacks, tok)
	return tok, nil
}

// Refresh obtains a new access token using override, or the stored refresh token when override is empty.
func (l *Lifecycle) Refresh(ctx context.Context, override string) (models.Token, error) {
	l.mu.Lock()
	tok, err := l.refreshLocked(ctx, override)
	callbacks := l.callbacks()
	l.mu.Unlock()

	if err != nil {
		return models.Token{}, err
	}
	notify(callbacks, tok)
	return tok, nil
}

// refreshLocked performs a refresh. The caller must hold l.mu.
func (l *Lifecycle) refreshLocked(ctx context.Context, override string) (models.Token, error) {
	refreshToken := override
	if refreshToken == "" {
		refreshToken = l.token.RefreshToken
	}
	if refreshToken == "" {
		return models.Token{}, shared.ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", l.creds.ClientID)

	tok, err := l.requestToken(ctx, form, models.Token{RefreshToken: refreshToken})
	if err != nil {
		l.logger.Warn("token refresh failed", "err", err)
		return models.Token{}, err
	}

	l.token = tok
	l.logger.Debug("access token refreshed", "expires", tok.Expiry.Format(time.RFC3339))
	return tok, nil
}

// AccessToken returns a usable access token, refreshing first when the current one has expired.
// Concurrent callers near expiry trigger a single refresh.
func (l *Lifecycle) AccessToken(ctx context.Context) (string, error) {
	tok, err := l.validToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// validToken returns the whole unexpired token record, read or refreshed under one hold of l.mu.
func (l *Lifecycle) validToken(ctx context.Context) (models.Token, error) {
	l.mu.Lock()
	if l.token.IsZero() {
		l.mu.Unlock()
		return models.Token{}, shared.ErrNotAuthenticated
	}

	if !l.token.Expired(l.now()) {
		tok := l.token
		l.mu.Unlock()
		return tok, nil
	}

	tok, err := l.refreshLocked(ctx, "")
	callbacks := l.callbacks()
	l.mu.Unlock()

	if err != nil {
		return models.Token{}, err
	}
	notify(callbacks, tok)
	return tok, nil
}

// Token returns a copy of the current token state.
func (l *Lifecycle) Token() models.Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token
}

// Authenticated reports whether an access token has been obtained or restored.
func (l *Lifecycle) Authenticated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.token.IsZero()
}

// Restore seeds the lifecycle with a previously persisted token. Update callbacks are not invoked.
func (l *Lifecycle) Restore(tok models.Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.token = tok
}

// Reset discards the token state and returns the lifecycle to unauthenticated.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.token = models.Token{}
}

// OnUpdate registers fn to run after every successful exchange or refresh.
func (l *Lifecycle) OnUpdate(fn func(models.Token)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onUpdate = append(l.onUpdate, fn)
}

func (l *Lifecycle) callbacks() []func(models.Token) {
	return append([]func(models.Token){}, l.onUpdate...)
}

func notify(callbacks []func(models.Token), tok models.Token) {
	for _, fn := range callbacks {
		fn(tok)
	}
}

// requestToken posts form to the token endpoint and decodes the response. Values missing from the response fall back
// to prev; the access token itself is required.
func (l *Lifecycle) requestToken(ctx context.Context, form url.Values, prev models.Token) (models.Token, error) {
	tokenURL := l.accountsURL + tokenPath
	res, err := l.exec.Execute(ctx, transport.Request{
		Method:      "POST",
		URL:         tokenURL,
		Body:        []byte(form.Encode()),
		ContentType: formEncoded,
		Basic:       &transport.BasicAuth{Username: l.creds.ClientID, Password: l.creds.ClientSecret},
	})
	if err != nil {
		return models.Token{}, err
	}

	if err := shared.CheckResponse("POST", tokenURL, res.Status, res.Header, res.Body); err != nil {
		return models.Token{}, err
	}

	o, err := codec.Parse(res.Body)
	if err != nil {
		return models.Token{}, err
	}

	access := o.String("access_token", "")
	if access == "" {
		return models.Token{}, &shared.DecodeError{Msg: "token response has no access_token", Body: res.Body}
	}

	expiresIn := o.Int64("expires_in", 0)
	return models.Token{
		AccessToken:  access,
		TokenType:    o.String("token_type", "Bearer"),
		Scope:        o.String("scope", prev.Scope),
		RefreshToken: o.String("refresh_token", prev.RefreshToken),
		Expiry:       l.now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// String describes the lifecycle state without revealing secrets.
func (l *Lifecycle) String() string {
	tok := l.Token()
	if tok.IsZero() {
		return "unauthenticated"
	}
	return fmt.Sprintf("authenticated (expires %s)", tok.Expiry.Format(time.RFC3339))
}
