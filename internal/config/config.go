// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Storage settings.
	DatabasePath string // SQLite file backing the persisted collections.

	// Story source settings.
	StoriesPath string // JSON file served by the file-backed story source.

	// Impact simulation settings.
	RandSeed int64 // 0 means seed from the wall clock.

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64
	RateLimitPerMinute  int // Write-endpoint budget per client IP; 0 disables.
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                envInt("VANTAGE_PORT", 8080),
		ReadTimeout:         envDuration("VANTAGE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("VANTAGE_WRITE_TIMEOUT", 30*time.Second),
		DatabasePath:        envStr("VANTAGE_DB_PATH", "vantage.db"),
		StoriesPath:         envStr("VANTAGE_STORIES_PATH", ""),
		RandSeed:            int64(envInt("VANTAGE_RAND_SEED", 0)),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "vantage"),
		LogLevel:            envStr("VANTAGE_LOG_LEVEL", "info"),
		MaxRequestBodyBytes: int64(envInt("VANTAGE_MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
		RateLimitPerMinute:  envInt("VANTAGE_RATE_LIMIT_PER_MINUTE", 120),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("config: VANTAGE_DB_PATH is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: VANTAGE_PORT must be a valid TCP port")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: VANTAGE_MAX_REQUEST_BODY_BYTES must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("config: VANTAGE_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
