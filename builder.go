package opsconsole

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/faceattend/opsconsole/internal/api"
	internalaudit "github.com/faceattend/opsconsole/internal/audit"
	"github.com/faceattend/opsconsole/session"
)

// Builder assembles an [Engine]. A Builder is single-use: Build consumes it
// and a second Build fails.
type Builder struct {
	config Config

	store      session.Store
	redis      redis.UniversalClient
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New creates a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the remote API root.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient replaces the transport used for all remote calls.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithStore sets the persisted session store. Mutually exclusive with
// WithRedis.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis backs the persisted session store with the given Redis client,
// namespaced by [StorageConfig.Namespace]. Mutually exclusive with
// WithStore.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the sink receiving audit events. The dispatcher only
// runs when [AuditConfig.Enabled] is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithAuditEnabled toggles the audit dispatcher.
func (b *Builder) WithAuditEnabled(enabled bool) *Builder {
	b.config.Audit.Enabled = enabled
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the poll latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store != nil && b.redis != nil {
		return nil, errors.New("provide either a store or a redis client, not both")
	}

	store := b.store
	if store == nil && b.redis != nil {
		store = session.NewRedisStore(b.redis, cfg.Storage.Namespace)
	}
	if store == nil {
		store = session.NewMemoryStore()
	}

	engine := &Engine{
		config:  cfg,
		store:   store,
		metrics: NewMetrics(cfg.Metrics),
	}
	engine.api = api.New(
		api.Config{
			BaseURL:   cfg.API.BaseURL,
			UserAgent: cfg.API.UserAgent,
		},
		b.httpClient,
		engine.credentialSnapshot,
		engine.handleUnauthorized,
	)
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return engine, nil
}
