package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Engine        EngineConfig        `yaml:"engine"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// EngineConfig holds tuning knobs for the recompute pipeline.
type EngineConfig struct {
	// BatchSize is the number of players processed per batch transaction
	// during a full population refresh.
	BatchSize int `yaml:"batch_size"`
	// Workers bounds batch parallelism.
	Workers int `yaml:"workers"`
	// WeightCacheSize is how many weight-curve indices are precomputed.
	WeightCacheSize int `yaml:"weight_cache_size"`
	// PlaylistRefreshPerSecond rate-limits playlist refresh publishes.
	PlaylistRefreshPerSecond float64 `yaml:"playlist_refresh_per_second"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, falling back to and
// then overriding with environment variables.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("ENGINE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.BatchSize = n
		}
	}
	if v := os.Getenv("ENGINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Workers = n
		}
	}
	if v := os.Getenv("ENGINE_WEIGHT_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.WeightCacheSize = n
		}
	}
	if v := os.Getenv("PLAYLIST_REFRESH_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.PlaylistRefreshPerSecond = f
		}
	}

	applyDefaults(&cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN not configured (set postgres.dsn or DATABASE_URL)")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS URL not configured (set nats.url or NATS_URL)")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Engine.BatchSize <= 0 {
		cfg.Engine.BatchSize = 5000
	}
	if cfg.Engine.Workers <= 0 {
		cfg.Engine.Workers = 4
	}
	if cfg.Engine.WeightCacheSize <= 0 {
		cfg.Engine.WeightCacheSize = 10000
	}
	if cfg.Engine.PlaylistRefreshPerSecond <= 0 {
		cfg.Engine.PlaylistRefreshPerSecond = 1
	}
}
