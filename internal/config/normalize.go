package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeWorker()
	c.normalizeLogging()
	c.normalizeMetrics()
	return nil
}

func (c *Config) normalizeDatabase() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = defaultDriver
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	if c.Database.DSN == "" {
		c.Database.DSN = defaultDSN
	}
	if c.Database.Driver == "sqlite" && strings.HasPrefix(c.Database.DSN, "~") {
		expanded, err := expandPath(c.Database.DSN)
		if err != nil {
			return fmt.Errorf("database.dsn: %w", err)
		}
		c.Database.DSN = expanded
	}
	c.Database.Table = strings.TrimSpace(c.Database.Table)
	if c.Database.Table == "" {
		c.Database.Table = defaultTable
	}
	return nil
}

func (c *Config) normalizeQueue() {
	c.Queue.Name = strings.TrimSpace(c.Queue.Name)
	if c.Queue.Name == "" {
		c.Queue.Name = defaultQueueName
	}
}

func (c *Config) normalizeWorker() {
	if c.Worker.RateBurst < 1 {
		c.Worker.RateBurst = defaultRateBurst
	}
	commands := make(map[string][]string, len(c.Worker.Commands))
	for class, argv := range c.Worker.Commands {
		commands[strings.TrimSpace(class)] = argv
	}
	c.Worker.Commands = commands
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Addr = strings.TrimSpace(c.Metrics.Addr)
}
