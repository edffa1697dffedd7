// Package vantage is the public API for embedding the Vantage briefing server.
//
// Consumers import this package to construct and run the server without
// forking it:
//
//	app, err := vantage.New(
//	    vantage.WithVersion(version),
//	    vantage.WithLogger(logger),
//	    vantage.WithStorySource(myWarehouseSource),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: vantage (root) imports
// internal/*, but internal/* never imports vantage (root). Public types
// (Story, StorySource) are standalone with no internal imports; conversion
// helpers live here because this is the only file that sees both sides of
// the boundary.
package vantage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/vantage-intel/vantage/internal/config"
	"github.com/vantage-intel/vantage/internal/decision"
	"github.com/vantage-intel/vantage/internal/feed"
	"github.com/vantage-intel/vantage/internal/impact"
	"github.com/vantage-intel/vantage/internal/ratelimit"
	"github.com/vantage-intel/vantage/internal/scoring"
	"github.com/vantage-intel/vantage/internal/server"
	"github.com/vantage-intel/vantage/internal/simclock"
	"github.com/vantage-intel/vantage/internal/source"
	"github.com/vantage-intel/vantage/internal/storage"
	"github.com/vantage-intel/vantage/internal/telemetry"
	"github.com/vantage-intel/vantage/internal/tracker"
)

// App is the Vantage server lifecycle. Construct with New(), run with Run().
// App has no public fields; use New() options to configure it.
type App struct {
	cfg          config.Config
	db           *storage.DB
	srv          *server.Server
	clock        *simclock.Clock
	limiter      ratelimit.Limiter
	otelShutdown func(context.Context) error
	logger       *slog.Logger
	version      string
}

// New initialises the Vantage server. It opens the database, wires the
// pipeline, and returns a ready-to-run App. It does NOT start any goroutines
// or accept HTTP connections; call Run().
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	// Load configuration (env vars), then apply option overrides.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.databasePath != "" {
		cfg.DatabasePath = o.databasePath
	}
	if o.storiesPath != "" {
		cfg.StoriesPath = o.storiesPath
	}
	if o.randSeed != 0 {
		cfg.RandSeed = o.randSeed
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("vantage starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	// Open the database.
	db, err := storage.Open(context.Background(), cfg.DatabasePath, logger)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("storage: %w", err)
	}

	// Simulation clock. All pipeline time flows through it.
	clock := simclock.New()
	if !o.clockOverride.IsZero() {
		clock.SetOverride(o.clockOverride)
		logger.Info("clock override set", "now", o.clockOverride)
	}

	// Story source: option > configured file > built-in demo set.
	var src source.StorySource
	switch {
	case o.source != nil:
		src = &storySourceAdapter{src: o.source}
		logger.Info("story source: external")
	case cfg.StoriesPath != "":
		src = source.NewFile(cfg.StoriesPath)
		logger.Info("story source: file", "path", cfg.StoriesPath)
	default:
		src = source.NewStatic(source.Demo(clock.Now()))
		logger.Info("story source: built-in demo set")
	}

	// Variance stream for the impact simulator.
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		logger.Info("impact variance seeded", "seed", seed)
	}
	rng := rand.New(rand.NewSource(seed))

	// Pipeline services.
	scorer := scoring.New(clock, logger)
	generator := decision.New(logger)
	feedSvc := feed.New(src, scorer, generator, clock, logger)
	trackerSvc := tracker.New(db, clock, logger)
	simulator := impact.New(db, clock, rng, logger)

	// Rate limiter for write endpoints.
	var limiter ratelimit.Limiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.NewMemoryLimiter(float64(cfg.RateLimitPerMinute)/60.0, cfg.RateLimitPerMinute)
		logger.Info("rate limiting: memory (in-process token bucket)",
			"per_minute", cfg.RateLimitPerMinute)
	} else {
		limiter = ratelimit.NoopLimiter{}
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		Feed:                feedSvc,
		Tracker:             trackerSvc,
		Simulator:           simulator,
		Logger:              logger,
		Limiter:             limiter,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	return &App{
		cfg:          cfg,
		db:           db,
		srv:          srv,
		clock:        clock,
		limiter:      limiter,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or a fatal
// server error occurs. On return, Shutdown is called automatically; callers
// should not call Shutdown separately.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return a.Shutdown(context.Background())
}

// Shutdown drains in-flight HTTP requests, then closes the rate limiter,
// database, and OTEL providers.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("vantage shutting down")

	httpCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(httpCtx); err != nil {
		a.logger.Error("http shutdown error", "error", err)
	}

	_ = a.limiter.Close()
	_ = a.otelShutdown(context.Background())
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}

	a.logger.Info("vantage stopped")
	return nil
}

// Handler returns the root HTTP handler for use in tests and embedding.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// SetTimeOverride pins the pipeline clock to the given instant. Demo and
// test hook; affects freshness decay, execution timestamps, and impact
// maturation uniformly.
func (a *App) SetTimeOverride(t time.Time) {
	a.clock.SetOverride(t)
}

// ClearTimeOverride returns the pipeline clock to real time.
func (a *App) ClearTimeOverride() {
	a.clock.ClearOverride()
}
