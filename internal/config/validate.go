package config

import (
	"errors"
	"fmt"

	"github.com/groundq/groundq/pkg/security"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateMaintenance(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres, or mysql (got %q)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return errors.New("database.max_idle_conns must be >= 0")
	}
	if c.Database.ConnMaxLifetimeMinutes < 0 {
		return errors.New("database.conn_max_lifetime_minutes must be >= 0")
	}
	if c.Database.ConnMaxIdleMinutes < 0 {
		return errors.New("database.conn_max_idle_minutes must be >= 0")
	}
	return nil
}

func (c *Config) validateQueue() error {
	if err := security.ValidateQueueName(c.Queue.Name); err != nil {
		return fmt.Errorf("queue.name: %w", err)
	}
	if c.Queue.DeletedRetention < -1 {
		return errors.New("queue.deleted_retention must be -1, 0, or minutes to keep")
	}
	if c.Queue.BuriedRetention < -1 {
		return errors.New("queue.buried_retention must be -1, 0, or minutes to keep")
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be positive")
	}
	if c.Worker.Concurrency > security.MaxConcurrency {
		return fmt.Errorf("worker.concurrency must be at most %d", security.MaxConcurrency)
	}
	if c.Worker.PollIntervalMS <= 0 {
		return errors.New("worker.poll_interval_ms must be positive")
	}
	if c.Worker.RateLimit < 0 {
		return errors.New("worker.rate_limit must be >= 0")
	}
	for class, argv := range c.Worker.Commands {
		if err := security.ValidateClass(class); err != nil {
			return fmt.Errorf("worker.commands: %w", err)
		}
		if len(argv) == 0 || argv[0] == "" {
			return fmt.Errorf("worker.commands.%s must name a command to run", class)
		}
	}
	return nil
}

func (c *Config) validateMaintenance() error {
	if c.Maintenance.EveryMinutes <= 0 {
		return errors.New("maintenance.every_minutes must be positive")
	}
	if c.Maintenance.RecoverAfterMinutes <= 0 {
		return errors.New("maintenance.recover_after_minutes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}
