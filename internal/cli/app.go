// Package cli wires the configuration into a running service for the
// triage command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/config"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/metrics"
	"github.com/aretw0/triage/internal/seed"
	"github.com/aretw0/triage/pkg/adapters/embedding"
	httpadapter "github.com/aretw0/triage/pkg/adapters/http"
	mcpadapter "github.com/aretw0/triage/pkg/adapters/mcp"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/adapters/openai"
	"github.com/aretw0/triage/pkg/adapters/pgvector"
	"github.com/aretw0/triage/pkg/adapters/redis"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/persistence/middleware"
	"github.com/aretw0/triage/pkg/ports"
)

// App is a fully wired service with the resources it owns.
type App struct {
	Config  *config.Config
	Service *triage.Service
	Metrics *metrics.Recorder
	Streams *httpadapter.StreamManager
	Logger  *slog.Logger

	references ports.ReferenceStore
	indexer    ports.ReferenceIndexer
	closers    []func() error
}

// BuildOption adjusts how an App is built.
type BuildOption func(*buildOptions)

type buildOptions struct {
	reasoner ports.Reasoner
	logger   *slog.Logger
}

// WithReasoner replaces the OpenAI client, for tests and offline runs.
func WithReasoner(r ports.Reasoner) BuildOption {
	return func(o *buildOptions) { o.reasoner = r }
}

// WithLogger replaces the logger built from the log settings.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// Build creates every adapter selected by cfg and the Service on top.
// On error, whatever was already opened is closed again.
func Build(ctx context.Context, cfg *config.Config, opts ...BuildOption) (_ *App, err error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, Logger: o.logger}
	defer func() {
		if err != nil {
			_ = app.closeResources()
		}
	}()

	if app.Logger == nil {
		logger, closer, err := logging.NewWithOptions(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to configure logging: %w", err)
		}
		app.Logger = logger
		app.closers = append(app.closers, closer.Close)
	}

	svcOpts := []triage.Option{
		triage.WithLogger(app.Logger),
		triage.WithSessionTTL(cfg.Store.SessionTTL),
		triage.WithLockTTL(cfg.Store.LockTTL),
		triage.WithStageTimeout(cfg.StageTimeout),
		triage.WithRetryPolicy(cfg.Retry),
		triage.WithTopK(cfg.Reference.TopK),
		triage.WithMaxInputSize(cfg.Intake.MaxInputSize),
	}

	storeOpts, err := app.openStores(ctx)
	if err != nil {
		return nil, err
	}
	svcOpts = append(svcOpts, storeOpts...)

	if err := app.openReferences(ctx); err != nil {
		return nil, err
	}
	if cfg.Reference.AutoSeed {
		report, err := seed.Seed(ctx, app.indexer, seed.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to seed references: %w", err)
		}
		app.Logger.Info("References ready", "indexed", report.Indexed, "total", report.Total)
	}

	app.Streams = httpadapter.NewStreamManager(app.Logger)
	hooks := []domain.LifecycleHooks{app.Streams.Hooks()}
	if cfg.Server.Metrics {
		app.Metrics = metrics.New()
		hooks = append(hooks, app.Metrics.Hooks())
	}
	svcOpts = append(svcOpts, triage.WithLifecycleHooks(domain.MergeHooks(hooks...)))

	reasoner := o.reasoner
	if reasoner == nil {
		if cfg.Reasoner.APIKey == "" {
			app.Logger.Warn("No reasoner API key configured; requests will likely be rejected",
				"base_url", cfg.Reasoner.BaseURL)
		}
		reasoner = openai.New(openai.Config{
			BaseURL:     cfg.Reasoner.BaseURL,
			APIKey:      cfg.Reasoner.APIKey,
			Model:       cfg.Reasoner.Model,
			MaxTokens:   cfg.Reasoner.MaxTokens,
			Temperature: cfg.Reasoner.Temperature,
			Timeout:     cfg.Reasoner.Timeout,
		})
	}

	svc, err := triage.New(reasoner, app.references, svcOpts...)
	if err != nil {
		return nil, err
	}
	app.Service = svc
	return app, nil
}

// openStores selects the session and result stores and returns the
// Service options that install them.
func (a *App) openStores(ctx context.Context) ([]triage.Option, error) {
	cfg := a.Config.Store

	var sessions ports.SessionStore
	var results ports.ResultStore
	var opts []triage.Option

	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}

		sessions = redis.NewSessionStore(client, redis.WithTTL(cfg.SessionTTL), redis.WithPrefix(cfg.Redis.Prefix+"session:"))
		results = redis.NewResultStore(client, redis.WithTTL(cfg.ResultTTL), redis.WithPrefix(cfg.Redis.Prefix+"job:"))
		if cfg.DistributedLock {
			opts = append(opts, triage.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)))
		}
		a.Logger.Info("Using redis stores", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	default:
		sessions = memory.NewSessionStore(memory.WithTTL(cfg.SessionTTL), memory.WithCleanupInterval(cfg.CleanupInterval))
		results = memory.NewResultStore(memory.WithTTL(cfg.ResultTTL), memory.WithCleanupInterval(cfg.CleanupInterval))
	}

	if cfg.EncryptionKey != "" {
		mw, err := newEncryption(cfg.EncryptionKey, cfg.FallbackKeys)
		if err != nil {
			return nil, err
		}
		sessions = middleware.Chain(sessions, mw)
	}

	return append(opts, triage.WithSessionStore(sessions), triage.WithResultStore(results)), nil
}

func newEncryption(active string, fallbacks []string) (middleware.Middleware, error) {
	key, err := middleware.ParseKey(active)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	ec := middleware.EncryptionConfig{ActiveKey: key}
	for i, f := range fallbacks {
		k, err := middleware.ParseKey(f)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		ec.FallbackKeys = append(ec.FallbackKeys, k)
	}
	return middleware.NewEncryption(ec)
}

func (a *App) openReferences(ctx context.Context) error {
	cfg := a.Config

	var embedder ports.Embedder
	switch cfg.Embedding.Provider {
	case config.EmbedderOllama:
		embedder = embedding.NewOllama(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	default:
		embedder = embedding.NewHashing(cfg.Embedding.Dimensions)
	}

	switch cfg.Reference.Backend {
	case config.BackendPGVector:
		db, err := pgvector.Open(cfg.Reference.DSN)
		if err != nil {
			return err
		}
		store := pgvector.New(db, embedder)
		a.closers = append(a.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		a.references, a.indexer = store, store
	default:
		store := memory.NewReferenceStore(embedder)
		a.references, a.indexer = store, store
	}
	return nil
}

// Indexer returns the reference indexer used for seeding.
func (a *App) Indexer() ports.ReferenceIndexer {
	return a.indexer
}

// Handler builds the HTTP API over the service.
func (a *App) Handler() http.Handler {
	opts := []httpadapter.Option{
		httpadapter.WithAPIKey(a.Config.Server.APIKey),
		httpadapter.WithCORSOrigins(a.Config.Server.CORSOrigins...),
		httpadapter.WithStreams(a.Streams),
		httpadapter.WithLogger(a.Logger),
	}
	if a.Metrics != nil {
		opts = append(opts, httpadapter.WithMetrics(a.Metrics.Handler()))
	}
	return httpadapter.NewHandler(a.Service, opts...)
}

// MCPServer builds the MCP tool server over the service.
func (a *App) MCPServer() *mcpadapter.Server {
	return mcpadapter.NewServer(a.Service, mcpadapter.WithLogger(a.Logger))
}

// Close waits for running jobs until ctx is done, then releases every
// resource.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Service != nil {
		if err := a.Service.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("service: %w", err))
		}
	}
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// closeResources releases adapters in reverse order of opening.
func (a *App) closeResources() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
