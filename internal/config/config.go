// Package config loads the YAML configuration for the finley pipeline and
// applies environment variable overrides. The resulting Config is constructed
// once at process start and passed explicitly to component constructors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the finley service.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Server   Server   `yaml:"server"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Logging  Logging  `yaml:"logging"`
	Universe Universe `yaml:"universe"`
	Fetch    Fetch    `yaml:"fetch"`
	Schedule string   `yaml:"schedule"` // cron spec; empty runs the pipeline once
}

// Storage holds database and archive settings.
type Storage struct {
	Driver  string `yaml:"driver"` // "postgres" or "sqlite"
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"` // parquet archive root; empty disables archiving
}

// Server holds network listener configuration for the query service.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Universe configures the ticker catalog source. URL points at a CSV listing
// with a symbol column; CSVPath is a local fallback for offline runs.
type Universe struct {
	URL     string `yaml:"url"`
	CSVPath string `yaml:"csv_path"`
}

// Fetch controls the concurrent bar fetcher.
type Fetch struct {
	MaxWorkers      int           `yaml:"max_workers"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
	Timeout         time.Duration `yaml:"timeout"` // per-horizon fetch stage deadline
}

// Load reads the YAML configuration file at the given path, parses it,
// applies environment overrides, and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills unset fields with working local defaults.
func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "finley.db"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Fetch.MaxWorkers <= 0 {
		cfg.Fetch.MaxWorkers = 10
	}
	if cfg.Fetch.RateLimitPerMin <= 0 {
		cfg.Fetch.RateLimitPerMin = 200
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 10 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("UNIVERSE_URL"); v != "" {
		cfg.Universe.URL = v
	}
	if v := os.Getenv("UNIVERSE_CSV"); v != "" {
		cfg.Universe.CSVPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Canonical Alpaca env vars used by the SDK take highest priority.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
