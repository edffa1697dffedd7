package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-intel/vantage/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "vantage.db", cfg.DatabasePath)
	assert.Empty(t, cfg.StoriesPath)
	assert.Zero(t, cfg.RandSeed)
	assert.Equal(t, "vantage", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(1024*1024), cfg.MaxRequestBodyBytes)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VANTAGE_PORT", "9090")
	t.Setenv("VANTAGE_READ_TIMEOUT", "5s")
	t.Setenv("VANTAGE_DB_PATH", "/tmp/other.db")
	t.Setenv("VANTAGE_STORIES_PATH", "/tmp/stories.json")
	t.Setenv("VANTAGE_RAND_SEED", "42")
	t.Setenv("VANTAGE_RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "vantage-staging")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	assert.Equal(t, "/tmp/stories.json", cfg.StoriesPath)
	assert.Equal(t, int64(42), cfg.RandSeed)
	assert.Zero(t, cfg.RateLimitPerMinute)
	assert.Equal(t, "vantage-staging", cfg.ServiceName)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("VANTAGE_PORT", "not-a-number")
	t.Setenv("VANTAGE_READ_TIMEOUT", "eventually")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("VANTAGE_PORT", "70000")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VANTAGE_PORT")
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		Port:                8080,
		DatabasePath:        "vantage.db",
		MaxRequestBodyBytes: 1024,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing db path", func(c *config.Config) { c.DatabasePath = "" }},
		{"zero port", func(c *config.Config) { c.Port = 0 }},
		{"negative body limit", func(c *config.Config) { c.MaxRequestBodyBytes = -1 }},
		{"negative rate limit", func(c *config.Config) { c.RateLimitPerMinute = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
