package janua

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultRefreshBuffer = 300 * time.Second
	DefaultUserAgent     = "janua-go/" + Version

	defaultMaxRetries    = 3
	defaultInitialDelay  = 1000 * time.Millisecond
	defaultMaxDelay      = 30000 * time.Millisecond
	defaultBackoffFactor = 2.0

	// maxRetryAfterHint caps how long a server-provided Retry-After hint is
	// honored before falling back to the regular backoff schedule.
	maxRetryAfterHint = 60 * time.Second
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.4.1"

// RetryConfig bounds the pipeline's retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int `envconfig:"MAX_RETRIES"`

	// InitialDelay seeds the exponential backoff schedule.
	InitialDelay time.Duration `envconfig:"INITIAL_DELAY"`

	// MaxDelay caps any single backoff delay.
	MaxDelay time.Duration `envconfig:"MAX_DELAY"`

	// BackoffFactor multiplies the delay each retry.
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR"`

	// RetryOnStatusCodes lists the HTTP statuses eligible for retry.
	// Network failures are always eligible.
	RetryOnStatusCodes []int `envconfig:"RETRY_ON_STATUS_CODES"`
}

// DefaultRetryConfig returns the stock retry policy: 3 retries, 1s initial
// delay doubling to a 30s ceiling, retrying 429/502/503/504.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:         defaultMaxRetries,
		InitialDelay:       defaultInitialDelay,
		MaxDelay:           defaultMaxDelay,
		BackoffFactor:      defaultBackoffFactor,
		RetryOnStatusCodes: []int{429, 502, 503, 504},
	}
}

// Config is the construction-time configuration surface of a Client.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.janua.dev". Required.
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey authenticates machine-to-machine callers. When set it is sent
	// on every request alongside (or instead of) a bearer token.
	APIKey string `envconfig:"API_KEY"`

	// Timeout bounds each individual attempt. An attempt that exceeds it is
	// abandoned and treated as a network failure.
	Timeout time.Duration `envconfig:"TIMEOUT"`

	// Retry bounds the pipeline retry loop.
	Retry RetryConfig `envconfig:"RETRY"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `envconfig:"USER_AGENT"`

	// Debug enables verbose request/retry logging on the client logger.
	Debug bool `envconfig:"DEBUG"`

	// RefreshBuffer is how long before actual expiry a token is considered
	// stale and proactively refreshed.
	RefreshBuffer time.Duration `envconfig:"REFRESH_BUFFER"`

	// StorePrefix namespaces token-store keys.
	StorePrefix string `envconfig:"STORE_PREFIX"`

	// StatePath selects the durable SQLite token store when non-empty;
	// otherwise tokens live in process memory only. Decided once at
	// construction.
	StatePath string `envconfig:"STATE_PATH"`

	// RateLimit caps outbound requests per second. Zero disables the
	// limiter.
	RateLimit float64 `envconfig:"RATE_LIMIT"`

	// RateBurst is the limiter burst size; defaults to 1 when RateLimit is
	// set.
	RateBurst int `envconfig:"RATE_BURST"`
}

// ConfigFromEnv builds a Config from JANUA_-prefixed environment variables
// (JANUA_BASE_URL, JANUA_API_KEY, JANUA_RETRY_MAX_RETRIES, ...).
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("janua", &cfg); err != nil {
		return Config{}, &ConfigurationError{Message: "invalid environment configuration: " + err.Error()}
	}
	return cfg, nil
}

// withDefaults fills any zero fields with the stock values.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RefreshBuffer <= 0 {
		c.RefreshBuffer = DefaultRefreshBuffer
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Retry.MaxRetries == 0 && c.Retry.InitialDelay == 0 &&
		c.Retry.BackoffFactor == 0 && len(c.Retry.RetryOnStatusCodes) == 0 {
		c.Retry = DefaultRetryConfig()
	}
	if c.Retry.InitialDelay <= 0 {
		c.Retry.InitialDelay = defaultInitialDelay
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = defaultMaxDelay
	}
	if c.Retry.BackoffFactor <= 0 {
		c.Retry.BackoffFactor = defaultBackoffFactor
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}
