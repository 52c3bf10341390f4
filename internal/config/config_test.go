package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.04, cfg.RiskFreeRate)
	assert.Equal(t, DefaultMinRegressionDays, cfg.MinRegressionDays)
	assert.Equal(t, 504, cfg.LookbackDays)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.MaxParallelCalcs)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("MIN_REGRESSION_DAYS", "90")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 90, cfg.MinRegressionDays)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestValidateRaisesRegressionFloor(t *testing.T) {
	cfg := &Config{
		Port:              8010,
		RiskFreeRate:      0.04,
		MinRegressionDays: 5,
		LookbackDays:      504,
		CacheTTL:          time.Minute,
		MaxParallelCalcs:  4,
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, MinRegressionDaysFloor, cfg.MinRegressionDays)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid port", func(c *Config) { c.Port = -1 }},
		{"lookback below regression minimum", func(c *Config) { c.LookbackDays = 30 }},
		{"risk-free rate out of range", func(c *Config) { c.RiskFreeRate = 2 }},
		{"non-positive cache TTL", func(c *Config) { c.CacheTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:              8010,
				RiskFreeRate:      0.04,
				MinRegressionDays: 60,
				LookbackDays:      504,
				CacheTTL:          time.Minute,
				MaxParallelCalcs:  4,
			}
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
