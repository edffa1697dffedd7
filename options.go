package vantage

import (
	"log/slog"
	"time"
)

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported; callers use the With* functions.
type resolvedOptions struct {
	port          int
	databasePath  string
	storiesPath   string
	logger        *slog.Logger
	version       string
	randSeed      int64
	source        StorySource
	clockOverride time.Time
}

// WithPort overrides the TCP port from config (VANTAGE_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithDatabasePath overrides the SQLite file path from config (VANTAGE_DB_PATH env var).
func WithDatabasePath(path string) Option {
	return func(o *resolvedOptions) { o.databasePath = path }
}

// WithStoriesPath overrides the story JSON file path from config
// (VANTAGE_STORIES_PATH env var). Ignored when WithStorySource is set.
func WithStoriesPath(path string) Option {
	return func(o *resolvedOptions) { o.storiesPath = path }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in the health endpoint and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithRandSeed fixes the impact simulator's variance stream for reproducible
// runs. Zero (the default) seeds from the wall clock.
func WithRandSeed(seed int64) Option {
	return func(o *resolvedOptions) { o.randSeed = seed }
}

// WithStorySource replaces the configured story feed with a caller-supplied
// source. Takes priority over WithStoriesPath and the built-in demo stories.
func WithStorySource(src StorySource) Option {
	return func(o *resolvedOptions) { o.source = src }
}

// WithClockOverride pins the pipeline clock to the given instant at startup.
// Use App.SetTimeOverride / App.ClearTimeOverride to move it afterwards.
func WithClockOverride(t time.Time) Option {
	return func(o *resolvedOptions) { o.clockOverride = t }
}
