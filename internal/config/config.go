// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Optimizer defaults. These are starting points only; every value can be
// overridden per request through the API or the CLI flags.
const (
	DefaultAssetCount     = 10
	DefaultPopulationSize = 30
	DefaultGenerations    = 100
	DefaultRunsPerEngine  = 5
	DefaultLookbackDays   = 252 // 1 year of trading days
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for all databases (always absolute)
	LogLevel       string
	Port           int
	DevMode        bool
	ReoptimizeCron string // Cron expression for scheduled re-optimization ("" disables)

	// Optimizer defaults, overridable per request
	AssetCount     int
	PopulationSize int
	Generations    int
	RunsPerEngine  int
	LookbackDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SWARMFOLIO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory to absolute path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnvInt("PORT", 8090),
		DevMode:        getEnvBool("DEV_MODE", false),
		ReoptimizeCron: getEnv("REOPTIMIZE_CRON", ""),
		AssetCount:     getEnvInt("OPTIMIZER_ASSET_COUNT", DefaultAssetCount),
		PopulationSize: getEnvInt("OPTIMIZER_POPULATION_SIZE", DefaultPopulationSize),
		Generations:    getEnvInt("OPTIMIZER_GENERATIONS", DefaultGenerations),
		RunsPerEngine:  getEnvInt("OPTIMIZER_RUNS_PER_ENGINE", DefaultRunsPerEngine),
		LookbackDays:   getEnvInt("OPTIMIZER_LOOKBACK_DAYS", DefaultLookbackDays),
	}

	if cfg.AssetCount < 1 {
		return nil, fmt.Errorf("OPTIMIZER_ASSET_COUNT must be positive, got %d", cfg.AssetCount)
	}
	if cfg.PopulationSize < 2 {
		return nil, fmt.Errorf("OPTIMIZER_POPULATION_SIZE must be at least 2, got %d", cfg.PopulationSize)
	}
	if cfg.Generations < 1 {
		return nil, fmt.Errorf("OPTIMIZER_GENERATIONS must be positive, got %d", cfg.Generations)
	}
	if cfg.RunsPerEngine < 1 {
		return nil, fmt.Errorf("OPTIMIZER_RUNS_PER_ENGINE must be positive, got %d", cfg.RunsPerEngine)
	}

	return cfg, nil
}

// HistoryDBPath returns the path of the price history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// ResultsDBPath returns the path of the optimization results database.
func (c *Config) ResultsDBPath() string {
	return filepath.Join(c.DataDir, "results.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
