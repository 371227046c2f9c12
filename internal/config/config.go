// Package config loads the CLI configuration: a TOML file in spindle's
// Default/normalize/Validate shape, with GROUNDQ_-prefixed environment
// variables overriding individual fields.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/storage"
)

//go:embed sample_config.toml
var sampleConfig string

// envPrefix is prepended to every environment override, so database.dsn
// becomes GROUNDQ_DATABASE_DSN.
const envPrefix = "GROUNDQ_"

// Database selects the relational backend holding the jobs table.
type Database struct {
	Driver                 string `toml:"driver"                    env:"DRIVER"`
	DSN                    string `toml:"dsn"                       env:"DSN"`
	Table                  string `toml:"table"                     env:"TABLE"`
	MaxOpenConns           int    `toml:"max_open_conns"            env:"MAX_OPEN_CONNS"`
	MaxIdleConns           int    `toml:"max_idle_conns"            env:"MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `toml:"conn_max_lifetime_minutes" env:"CONN_MAX_LIFETIME_MINUTES"`
	ConnMaxIdleMinutes     int    `toml:"conn_max_idle_minutes"     env:"CONN_MAX_IDLE_MINUTES"`
}

// Queue names the default queue and its retentions. Retentions are minutes;
// 0 removes finished rows outright and -1 keeps them forever.
type Queue struct {
	Name             string `toml:"name"              env:"NAME"`
	DeletedRetention int    `toml:"deleted_retention" env:"DELETED_RETENTION"`
	BuriedRetention  int    `toml:"buried_retention"  env:"BURIED_RETENTION"`
}

// Worker tunes the claim loops run by the work command. Commands maps a job
// class to the argv executed for it; the job's content arrives on stdin.
type Worker struct {
	Concurrency    int                 `toml:"concurrency"      env:"CONCURRENCY"`
	PollIntervalMS int                 `toml:"poll_interval_ms" env:"POLL_INTERVAL_MS"`
	RateLimit      float64             `toml:"rate_limit"       env:"RATE_LIMIT"`
	RateBurst      int                 `toml:"rate_burst"       env:"RATE_BURST"`
	Commands       map[string][]string `toml:"commands"`
}

// Maintenance tunes the embedded sweep: how often it runs and how long a
// job may sit RUNNING before a recover returns it to the queue.
type Maintenance struct {
	EveryMinutes        int `toml:"every_minutes"         env:"EVERY_MINUTES"`
	RecoverAfterMinutes int `toml:"recover_after_minutes" env:"RECOVER_AFTER_MINUTES"`
}

// Logging selects the slog handler built by the CLI.
type Logging struct {
	Level  string `toml:"level"  env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// Metrics configures the Prometheus endpoint served by the work command.
// An empty addr disables it.
type Metrics struct {
	Addr string `toml:"addr" env:"ADDR"`
}

// Config is the root of the TOML file.
type Config struct {
	Database    Database    `toml:"database"    envPrefix:"DATABASE_"`
	Queue       Queue       `toml:"queue"       envPrefix:"QUEUE_"`
	Worker      Worker      `toml:"worker"      envPrefix:"WORKER_"`
	Maintenance Maintenance `toml:"maintenance" envPrefix:"MAINTENANCE_"`
	Logging     Logging     `toml:"logging"     envPrefix:"LOG_"`
	Metrics     Metrics     `toml:"metrics"     envPrefix:"METRICS_"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/groundq/config.toml")
}

// Load locates, parses, and validates a configuration file. Values layer as
// defaults, then the file, then GROUNDQ_ environment variables. The second
// return is the resolved path; the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("groundq.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// PoolConfig maps the database section onto the store's pool settings.
func (c *Config) PoolConfig() storage.PoolConfig {
	return storage.PoolConfig{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.Database.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(c.Database.ConnMaxIdleMinutes) * time.Minute,
	}
}

// DeletedRetention returns the configured retention for deleted rows.
func (c *Config) DeletedRetention() core.Retention {
	return core.Retention(c.Queue.DeletedRetention)
}

// BuriedRetention returns the configured retention for buried rows.
func (c *Config) BuriedRetention() core.Retention {
	return core.Retention(c.Queue.BuriedRetention)
}

// PollInterval returns the worker poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Worker.PollIntervalMS) * time.Millisecond
}

// SweepEvery returns the cadence of the embedded maintenance sweep.
func (c *Config) SweepEvery() time.Duration {
	return time.Duration(c.Maintenance.EveryMinutes) * time.Minute
}

// RecoverAfter returns the recover window of the maintenance sweep.
func (c *Config) RecoverAfter() time.Duration {
	return time.Duration(c.Maintenance.RecoverAfterMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
