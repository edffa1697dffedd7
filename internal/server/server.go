package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vantage-intel/vantage/internal/feed"
	"github.com/vantage-intel/vantage/internal/impact"
	"github.com/vantage-intel/vantage/internal/ratelimit"
	"github.com/vantage-intel/vantage/internal/tracker"
)

// Server is the Vantage HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	// Required dependencies.
	Feed      *feed.Feed
	Tracker   *tracker.Tracker
	Simulator *impact.Simulator
	Logger    *slog.Logger

	// Optional dependencies (nil = disabled).
	Limiter ratelimit.Limiter

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		Feed:                cfg.Feed,
		Tracker:             cfg.Tracker,
		Simulator:           cfg.Simulator,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Request ID extractor for rate limit error responses.
	reqIDFunc := func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	}

	// Mutating endpoints are rate limited by client IP; reads are not.
	writeRL := ratelimit.Middleware(cfg.Limiter, ratelimit.IPKeyFunc, reqIDFunc)

	mux := http.NewServeMux()

	// Feed endpoints.
	mux.HandleFunc("GET /v1/stories", h.HandleStories)
	mux.HandleFunc("GET /v1/stories/{story_id}", h.HandleStoryByID)
	mux.HandleFunc("GET /v1/briefing", h.HandleBriefing)
	mux.HandleFunc("GET /v1/decisions/top", h.HandleTopDecisions)
	mux.HandleFunc("GET /v1/decisions/{decision_id}", h.HandleDecisionByID)

	// Execution tracking.
	mux.Handle("POST /v1/decisions/execute", writeRL(http.HandlerFunc(h.HandleExecute)))
	mux.HandleFunc("GET /v1/decisions/executed", h.HandleExecuted)
	mux.Handle("POST /v1/decisions/executed/{execution_id}/status", writeRL(http.HandlerFunc(h.HandleUpdateStatus)))

	// Impact simulation.
	mux.Handle("POST /v1/impact/check", writeRL(http.HandlerFunc(h.HandleImpactCheck)))
	mux.HandleFunc("GET /v1/impact", h.HandleImpactList)
	mux.Handle("POST /v1/impact/{update_id}/read", writeRL(http.HandlerFunc(h.HandleImpactRead)))

	// Health (no rate limit).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoverMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Handlers returns the underlying handler set.
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
