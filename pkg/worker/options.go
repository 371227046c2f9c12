// Package worker provides the Worker job processor.
package worker

import (
	"log/slog"
	"time"

	"github.com/groundq/groundq/pkg/metrics"
	"github.com/groundq/groundq/pkg/schedule"
	"github.com/groundq/groundq/pkg/security"
)

// WorkerOption configures a Worker.
type WorkerOption interface {
	ApplyWorker(*WorkerConfig)
}

type workerOptionFunc func(*WorkerConfig)

func (f workerOptionFunc) ApplyWorker(c *WorkerConfig) { f(c) }

// WorkerConfig holds worker configuration.
type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	WorkerID     string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics

	// RateLimit caps claims per second across the whole worker; 0 means
	// no limit. RateBurst is the limiter's burst size.
	RateLimit float64
	RateBurst int

	// Maintenance, when set, runs an embedded sweep on that schedule.
	// RecoverAfter is the sweep's recover window.
	Maintenance  schedule.Schedule
	RecoverAfter time.Duration

	StorageRetry *RetryConfig
	PopRetry     *RetryConfig
}

// WithConcurrency sets how many jobs may execute at once.
// Values are clamped to [1, MaxConcurrency].
func WithConcurrency(n int) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.Concurrency = security.ClampConcurrency(n)
	})
}

// WithPollInterval sets how long the worker sleeps when the queue is empty.
func WithPollInterval(d time.Duration) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.PollInterval = d
	})
}

// WithWorkerID overrides the generated worker identity.
func WithWorkerID(id string) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.WorkerID = id
	})
}

// WithLogger sets the worker's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.Logger = logger
	})
}

// WithMetrics instruments job outcomes and handler durations.
func WithMetrics(m *metrics.Metrics) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.Metrics = m
	})
}

// WithRateLimit caps how many jobs per second the worker claims.
func WithRateLimit(perSecond float64, burst int) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.RateLimit = perSecond
		c.RateBurst = burst
	})
}

// WithMaintenance embeds a maintenance sweep in the worker, running on the
// given schedule alongside job processing.
func WithMaintenance(sched schedule.Schedule) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.Maintenance = sched
	})
}

// WithRecoverAfter sets the embedded sweep's recover window. Keep it longer
// than the slowest legitimate job.
func WithRecoverAfter(d time.Duration) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.RecoverAfter = d
	})
}

// WithStorageRetry sets the retry configuration for settling jobs
// (delete, release, bury).
func WithStorageRetry(cfg RetryConfig) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.StorageRetry = &cfg
	})
}

// WithPopRetry sets the retry configuration for claiming jobs.
func WithPopRetry(cfg RetryConfig) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		c.PopRetry = &cfg
	})
}

// WithRetryAttempts sets the number of storage retry attempts, keeping the
// default backoff parameters.
func WithRetryAttempts(n int) WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		cfg := DefaultRetryConfig()
		cfg.MaxAttempts = n
		c.StorageRetry = &cfg
	})
}

// DisableRetry makes every storage operation and pop a single attempt.
func DisableRetry() WorkerOption {
	return workerOptionFunc(func(c *WorkerConfig) {
		storageCfg := DefaultRetryConfig()
		storageCfg.MaxAttempts = 1
		popCfg := DefaultRetryConfig()
		popCfg.MaxAttempts = 1
		c.StorageRetry = &storageCfg
		c.PopRetry = &popCfg
	})
}
