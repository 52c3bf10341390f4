package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the regression sample requirement. The floor is absolute:
// pairs below it always degrade to low_data.
const (
	DefaultMinRegressionDays = 60
	MinRegressionDaysFloor   = 20
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for all databases
	Port              int
	LogLevel          string
	DevMode           bool
	RiskFreeRate      float64       // Annual risk-free rate for Sharpe
	MinRegressionDays int           // Minimum aligned days for a usable beta
	LookbackDays      int           // Price history window for regressions
	CacheTTL          time.Duration // Calculation cache time-to-live
	CacheSize         int           // Max cached entries
	RecalcSchedule    string        // Cron spec for the recalculation batch
	PriceSyncSchedule string        // Cron spec for the nightly price sync
	MaxParallelCalcs  int           // Concurrent per-portfolio recalculations
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		if _, err := os.Stat("../data"); err == nil {
			dataDir = "../data"
		} else {
			dataDir = "./data"
		}
	}

	cfg := &Config{
		DataDir:           dataDir,
		Port:              getEnvAsInt("PORT", 8010),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0.04),
		MinRegressionDays: getEnvAsInt("MIN_REGRESSION_DAYS", DefaultMinRegressionDays),
		LookbackDays:      getEnvAsInt("LOOKBACK_DAYS", 504),
		CacheTTL:          time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 900)) * time.Second,
		CacheSize:         getEnvAsInt("CACHE_SIZE", 4096),
		RecalcSchedule:    getEnv("RECALC_SCHEDULE", "0 30 2 * * *"),
		PriceSyncSchedule: getEnv("PRICE_SYNC_SCHEDULE", "0 0 1 * * *"),
		MaxParallelCalcs:  getEnvAsInt("MAX_PARALLEL_CALCS", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MinRegressionDays < MinRegressionDaysFloor {
		// Never allow the configured minimum below the absolute floor
		c.MinRegressionDays = MinRegressionDaysFloor
	}
	if c.LookbackDays < c.MinRegressionDays {
		return fmt.Errorf("lookback days (%d) must cover the regression minimum (%d)", c.LookbackDays, c.MinRegressionDays)
	}
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("risk-free rate out of range: %f", c.RiskFreeRate)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive: %s", c.CacheTTL)
	}
	if c.MaxParallelCalcs < 1 {
		c.MaxParallelCalcs = 1
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets environment variable as int with fallback
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsFloat gets environment variable as float64 with fallback
func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvAsBool gets environment variable as bool with fallback
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
