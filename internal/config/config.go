// Package config loads strenly settings from YAML with STRENLY_ environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root of strenly.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Seed     SeedConfig     `yaml:"seed"`
}

type DatabaseConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	SlowQueryMs  int    `yaml:"slow_query_ms"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SeedConfig names the organization and owner used by the seed command.
type SeedConfig struct {
	OrganizationID string `yaml:"organization_id"`
	UserID         string `yaml:"user_id"`
	Templates      bool   `yaml:"templates"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "strenly.db",
			MaxOpenConns: 4,
			SlowQueryMs:  50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Seed: SeedConfig{
			OrganizationID: "default-org",
			UserID:         "seed",
			Templates:      true,
		},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides:
//
//	STRENLY_DB_PATH, STRENLY_DB_MAX_OPEN_CONNS, STRENLY_DB_SLOW_QUERY_MS,
//	STRENLY_LOG_LEVEL, STRENLY_LOG_FORMAT,
//	STRENLY_SEED_ORG, STRENLY_SEED_TEMPLATES
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("STRENLY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("STRENLY_DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STRENLY_DB_MAX_OPEN_CONNS: %w", err)
		}
		cfg.Database.MaxOpenConns = n
	}
	if v := os.Getenv("STRENLY_DB_SLOW_QUERY_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STRENLY_DB_SLOW_QUERY_MS: %w", err)
		}
		cfg.Database.SlowQueryMs = n
	}
	if v := os.Getenv("STRENLY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STRENLY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STRENLY_SEED_ORG"); v != "" {
		cfg.Seed.OrganizationID = v
	}
	if v := os.Getenv("STRENLY_SEED_TEMPLATES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STRENLY_SEED_TEMPLATES: %w", err)
		}
		cfg.Seed.Templates = b
	}
	return nil
}

// Validate checks every field the CLI depends on.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.SlowQueryMs <= 0 {
		return fmt.Errorf("database.slow_query_ms must be positive, got %d", c.Database.SlowQueryMs)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v, got %q", logFormats, c.Log.Format)
	}
	if c.Seed.OrganizationID == "" {
		return fmt.Errorf("seed.organization_id is required")
	}
	return nil
}
