package opsconsole

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config defines the engine's tunable behavior. Instances are configured
// during initialization and treated as immutable afterwards; the Builder
// copies the config at Build.
type Config struct {
	API     APIConfig
	Sync    SyncConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the remote attendance API and bounds each request.
type APIConfig struct {
	// BaseURL is the remote API root, e.g. "http://localhost:8000".
	// Required.
	BaseURL string
	// RequestTimeout bounds every non-poll request round trip.
	RequestTimeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
}

/*
====================================
SYNC CONFIG
====================================
*/

// SyncConfig drives the status synchronization engine.
type SyncConfig struct {
	// PollInterval is the fixed tick between status polls. There is no
	// backoff: the control loop is low-frequency and human-supervised.
	PollInterval time.Duration
	// SettleDelay is the wait between a successful toggle command and the
	// confirmation poll, compensating for the pipeline's asynchronous
	// state transition.
	SettleDelay time.Duration
	// RequestTimeout bounds a single poll round trip.
	RequestTimeout time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig scopes the persisted session entries.
type StorageConfig struct {
	// Namespace prefixes the credential and identity entries. The
	// namespace is owned exclusively by the session engine.
	Namespace string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Callers override what
// they need and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			RequestTimeout: 10 * time.Second,
			UserAgent:      "opsconsole",
		},
		Sync: SyncConfig{
			PollInterval:   30 * time.Second,
			SettleDelay:    time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Namespace: "console-auth",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are values; a copy is a deep copy.
	return cfg
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base url required")
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api base url invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api base url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("api base url missing host")
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("api request timeout must be positive")
	}
	if c.Sync.PollInterval <= 0 {
		return errors.New("sync poll interval must be positive")
	}
	if c.Sync.SettleDelay < 0 {
		return errors.New("sync settle delay must not be negative")
	}
	if c.Sync.RequestTimeout <= 0 {
		return errors.New("sync request timeout must be positive")
	}
	if c.Storage.Namespace == "" {
		return errors.New("storage namespace required")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}
	return nil
}
