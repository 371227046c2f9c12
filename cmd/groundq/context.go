package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/internal/config"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// openStore connects to the configured database and migrates the jobs table.
func (c *commandContext) openStore(ctx context.Context) (*storage.GormStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN, storage.WithPoolConfig(cfg.PoolConfig()))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := storage.NewGormStore(db, storage.WithTable(cfg.Database.Table))
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate jobs table: %w", err)
	}
	return store, nil
}

// withQueue runs fn with an engine bound to the named queue, or to the
// configured queue when name is empty. The connection is closed afterwards.
func (c *commandContext) withQueue(cmd *cobra.Command, name string, fn func(q *queue.Queue, store *storage.GormStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.Queue.Name
	}

	store, err := c.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store)

	q, err := queue.New(store, name,
		queue.WithDeletedRetention(cfg.DeletedRetention()),
		queue.WithBuriedRetention(cfg.BuriedRetention()),
	)
	if err != nil {
		return err
	}
	return fn(q, store)
}

func closeStore(store *storage.GormStore) {
	if sqlDB, err := store.DB().DB(); err == nil {
		sqlDB.Close()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
