package maintain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/metrics"
	"github.com/groundq/groundq/pkg/schedule"
)

// Defaults applied by New. The recover window must stay comfortably longer
// than the slowest legitimate job, or fresh claims get yanked back
// mid-flight.
const (
	DefaultRecoverAfter = 15 * time.Minute
)

// Sweeper periodically returns abandoned jobs to the queue and removes
// terminal rows past their retention.
type Sweeper struct {
	queue        core.Queue
	schedule     schedule.Schedule
	recoverAfter time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// SweeperOption configures a Sweeper.
type SweeperOption interface {
	applySweeper(*Sweeper)
}

type sweeperOptionFunc func(*Sweeper)

func (f sweeperOptionFunc) applySweeper(s *Sweeper) { f(s) }

// WithSchedule sets the sweep cadence. Default: every minute.
func WithSchedule(sched schedule.Schedule) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.schedule = sched
	})
}

// WithRecoverAfter sets how long a job may stay RUNNING before a sweep
// returns it to the queue.
func WithRecoverAfter(d time.Duration) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.recoverAfter = d
	})
}

// WithLogger sets the sweeper's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.logger = logger
	})
}

// WithMetrics instruments recover and purge counts.
func WithMetrics(m *metrics.Metrics) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.metrics = m
	})
}

// New creates a sweeper for the queue.
func New(q core.Queue, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		queue:        q,
		schedule:     schedule.Every(time.Minute),
		recoverAfter: DefaultRecoverAfter,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt.applySweeper(s)
	}
	return s
}

// RecoverAfter returns the configured recover window.
func (s *Sweeper) RecoverAfter() time.Duration {
	return s.recoverAfter
}

// Sweep runs one recover-then-purge pass. Both halves run even when one
// fails; the errors are joined.
func (s *Sweeper) Sweep(ctx context.Context) error {
	var errs []error

	recovered, err := s.queue.Recover(ctx, s.recoverAfter)
	if err != nil {
		errs = append(errs, err)
	} else {
		s.metrics.Recovered(recovered)
		if recovered > 0 {
			s.logger.Info("recovered abandoned jobs",
				"queue", s.queue.Name(), "count", recovered)
		}
	}

	purged, err := s.queue.Purge(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		s.metrics.Purged(purged)
		if purged > 0 {
			s.logger.Info("purged expired jobs",
				"queue", s.queue.Name(), "count", purged)
		}
	}

	return errors.Join(errs...)
}

// Run sweeps on the configured schedule until ctx is cancelled. Sweep
// failures are logged and do not stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	for {
		next := s.schedule.Next(time.Now())

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := s.Sweep(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Error("sweep failed", "queue", s.queue.Name(), "error", err)
		}
	}
}
