package janua

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/madfam-org/janua-go/internal/metrics"
	"github.com/madfam-org/janua-go/pkg/slogx"
	"github.com/madfam-org/janua-go/pkg/tokenstore"

	"golang.org/x/time/rate"
)

// Client is an authenticated Janua API client. It owns the token store and
// token manager, and routes every operation through the retrying request
// pipeline. Construct one per principal and share it; all methods are safe
// for concurrent use.
type Client struct {
	cfg     Config
	baseURL string

	httpClient *http.Client
	store      tokenstore.Store
	ownsStore  bool
	tokens     *tokenManager
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	bus        *eventBus
	log        *slog.Logger

	// Test seams.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The pipeline manages
// per-attempt timeouts itself, so the provided client should not set one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStore replaces the token store, overriding the StatePath-based
// selection. The caller keeps ownership and is responsible for closing it.
func WithStore(store tokenstore.Store) Option {
	return func(c *Client) {
		c.store = store
		c.ownsStore = false
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New constructs a Client. Store selection happens here, once: a configured
// StatePath selects the durable SQLite store, otherwise tokens are held in
// process memory.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, &ConfigurationError{Message: "BaseURL is required"}
	}
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		metrics: metrics.New(),
		bus:     newEventBus(),
		log:     slogx.Nop(),
		sleep:   sleepContext,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.store == nil {
		if cfg.StatePath != "" {
			store, err := tokenstore.NewSQLiteStore(cfg.StatePath, cfg.StorePrefix)
			if err != nil {
				return nil, &ConfigurationError{Message: "durable token store unavailable: " + err.Error()}
			}
			c.store = store
			c.ownsStore = true
		} else {
			c.store = tokenstore.NewMemoryStore(cfg.StorePrefix)
		}
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	c.tokens = &tokenManager{
		store:       c.store,
		buffer:      cfg.RefreshBuffer,
		now:         func() time.Time { return c.now() },
		refresh:     c.refreshGrant,
		onRefreshed: func() { c.bus.emit(EventTokenRefreshed) },
		onCleared:   func() { c.bus.emit(EventSignedOut) },
	}

	return c, nil
}

// Subscribe registers a handler for an auth-state event and returns its
// unsubscribe function.
func (c *Client) Subscribe(event Event, fn func()) func() {
	return c.bus.subscribe(event, fn)
}

// IsAuthenticated reports whether the client holds credential material.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.tokens.IsAuthenticated(ctx)
}

// AccessToken returns a usable access token, refreshing first when the
// stored one is inside the expiry buffer. Empty when unauthenticated.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return c.tokens.AccessToken(ctx)
}

// Tokens returns a snapshot of the stored token set, or nil when
// unauthenticated. Useful for handing a session to another process.
func (c *Client) Tokens(ctx context.Context) (*TokenSet, error) {
	return c.tokens.TokenSet(ctx)
}

// ImportTokens seeds the client from a previously issued token response,
// e.g. one stored by an earlier process. Emits EventSignedIn.
func (c *Client) ImportTokens(ctx context.Context, tr *TokenResponse) error {
	if tr == nil || tr.AccessToken == "" {
		return &ConfigurationError{Message: "ImportTokens requires an access token"}
	}
	if err := c.tokens.SetTokens(ctx, tr); err != nil {
		return err
	}
	c.bus.emit(EventSignedIn)
	return nil
}

// ClearTokens destroys the stored token set without calling the API.
// Emits EventSignedOut. Prefer Logout, which also revokes server-side.
func (c *Client) ClearTokens(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}

// MetricsHandler exposes the client's Prometheus metrics for scraping.
func (c *Client) MetricsHandler() http.Handler {
	return c.metrics.Handler()
}

// Dispose releases resources held by the client: subscriptions are dropped
// and a store opened by the client itself is closed. The token set is left
// intact so a later client can resume the session.
func (c *Client) Dispose() error {
	c.bus.reset()
	if c.ownsStore {
		if closer, ok := c.store.(*tokenstore.SQLiteStore); ok {
			return closer.Close()
		}
	}
	return nil
}
