package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/groundq/groundq/pkg/core"
	intctx "github.com/groundq/groundq/pkg/internal/context"
	"github.com/groundq/groundq/pkg/internal/handler"
	"github.com/groundq/groundq/pkg/maintain"
	"github.com/groundq/groundq/pkg/metrics"
	"github.com/groundq/groundq/pkg/security"
)

// Worker claims jobs from a queue and drives them through registered
// handlers.
type Worker struct {
	queue   core.Queue
	config  WorkerConfig
	logger  *slog.Logger
	limiter *rate.Limiter
	sweeper *maintain.Sweeper

	mu       sync.RWMutex
	handlers map[string]*handler.Handler

	wg sync.WaitGroup
}

// New creates a worker for the given queue.
func New(q core.Queue, opts ...WorkerOption) *Worker {
	config := WorkerConfig{
		Concurrency:  1,
		PollInterval: time.Second,
		WorkerID:     uuid.New().String(),
		RecoverAfter: maintain.DefaultRecoverAfter,
	}

	for _, opt := range opts {
		opt.ApplyWorker(&config)
	}

	if config.StorageRetry == nil {
		cfg := DefaultRetryConfig()
		config.StorageRetry = &cfg
	}
	if config.PopRetry == nil {
		// Use longer backoff for pops to avoid hammering DB during outages
		cfg := RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    500 * time.Millisecond,
			MaxBackoff:        10 * time.Second,
			BackoffMultiplier: 2.0,
			JitterFraction:    0.2,
		}
		config.PopRetry = &cfg
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	w := &Worker{
		queue:    q,
		config:   config,
		logger:   config.Logger,
		handlers: make(map[string]*handler.Handler),
	}

	if config.RateLimit > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(config.RateBurst, 1))
	}
	if config.Maintenance != nil {
		w.sweeper = maintain.New(q,
			maintain.WithSchedule(config.Maintenance),
			maintain.WithRecoverAfter(config.RecoverAfter),
			maintain.WithLogger(w.logger),
			maintain.WithMetrics(config.Metrics),
		)
	}
	return w
}

// WorkerID returns the worker's identity, visible to handlers via jobctx.
func (w *Worker) WorkerID() string {
	return w.config.WorkerID
}

// Register binds a handler to a job class. The handler must have signature
// func(ctx context.Context, args T) error; the job's content is unmarshaled
// into T. Register panics on an invalid class or handler shape.
func (w *Worker) Register(class string, fn any) {
	if err := security.ValidateClass(class); err != nil {
		panic(fmt.Sprintf("invalid job class %q: %v", class, err))
	}
	h, err := handler.NewHandler(fn)
	if err != nil {
		panic(fmt.Sprintf("invalid handler for job class %q: %v", class, err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[class] = h
}

// Start begins processing jobs. It blocks until ctx is cancelled, finishing
// in-flight jobs before returning.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker started",
		"worker_id", w.config.WorkerID,
		"queue", w.queue.Name(),
		"concurrency", w.config.Concurrency)

	jobs := make(chan *core.Job, w.config.Concurrency)

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.processLoop(ctx, jobs)
	}

	if w.sweeper != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			_ = w.sweeper.Run(ctx)
		}()
	}

	err := w.pollLoop(ctx, jobs)
	close(jobs)
	w.wg.Wait()

	w.logger.Info("worker stopped", "worker_id", w.config.WorkerID)
	return err
}

// pollLoop claims jobs and feeds them to the process loops. It pops eagerly
// while the queue has eligible work and sleeps PollInterval when it drains.
func (w *Worker) pollLoop(ctx context.Context, jobs chan<- *core.Job) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		job, err := w.popWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			var payloadErr *core.PayloadError
			if errors.As(err, &payloadErr) {
				w.logger.Error("claimed job has an undecodable payload; recover will return it to the queue",
					"job_id", payloadErr.ID, "error", payloadErr.Err)
				continue
			}

			w.logger.Error("failed to pop after retries", "error", err)
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		if job == nil {
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		select {
		case jobs <- job:
		case <-ctx.Done():
			w.logger.Warn("shutting down with an undispatched claim; recover will return it to the queue",
				"job_id", job.ID)
			return ctx.Err()
		}
	}
}

// popWithRetry attempts to claim a job with exponential backoff on failure.
func (w *Worker) popWithRetry(ctx context.Context) (*core.Job, error) {
	var job *core.Job
	err := retryWithBackoff(ctx, *w.config.PopRetry, func() error {
		var popErr error
		job, popErr = w.queue.Pop(ctx)
		return popErr
	})
	return job, err
}

func (w *Worker) sleep(ctx context.Context) error {
	timer := time.NewTimer(w.config.PollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *Worker) processLoop(ctx context.Context, jobs <-chan *core.Job) {
	defer w.wg.Done()

	for job := range jobs {
		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *core.Job) {
	start := time.Now()

	w.mu.RLock()
	h, ok := w.handlers[job.Class]
	w.mu.RUnlock()

	if !ok {
		w.logger.Error("no handler registered for job class",
			"job_id", job.ID, "class", job.Class)
		w.bury(context.WithoutCancel(ctx), job,
			fmt.Sprintf("no handler registered for class %q", job.Class), "")
		return
	}

	jobCtx := intctx.WithJobContext(ctx, &intctx.JobContext{
		Job:      job,
		Queue:    w.queue,
		WorkerID: w.config.WorkerID,
	})

	err := w.executeHandler(jobCtx, h, job)
	w.config.Metrics.ObserveJobDuration(time.Since(start))
	w.settle(ctx, job, err)
}

func (w *Worker) executeHandler(ctx context.Context, h *handler.Handler, job *core.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	return h.Execute(ctx, job.Content)
}

// settle moves the job out of RUNNING according to the handler's outcome.
// The transitions run detached from ctx so a shutdown that cancels handlers
// does not also strand their results in RUNNING. A handler that failed only
// because the worker is shutting down has its job released, not buried.
func (w *Worker) settle(ctx context.Context, job *core.Job, err error) {
	finishCtx := context.WithoutCancel(ctx)

	var (
		retryErr *core.RetryError
		failErr  *core.FailError
	)

	switch {
	case err == nil:
		op := func() error { return w.queue.Delete(finishCtx, job) }
		if err := retryWithBackoff(finishCtx, *w.config.StorageRetry, op); err != nil {
			w.reportSettleFailure(job, "delete", err)
			return
		}
		w.logger.Debug("job finished", "job_id", job.ID, "class", job.Class)
		w.config.Metrics.JobSettled(metrics.OutcomeDeleted)

	case errors.As(err, &retryErr):
		opts := make([]core.Option, 0, 1)
		if retryErr.At != nil {
			opts = append(opts, core.At(*retryErr.At))
		} else {
			opts = append(opts, core.Delay(retryErr.Delay))
		}

		op := func() error { return w.queue.Release(finishCtx, job, opts...) }
		if err := retryWithBackoff(finishCtx, *w.config.StorageRetry, op); err != nil {
			w.reportSettleFailure(job, "release", err)
			return
		}
		w.logger.Info("job released for retry",
			"job_id", job.ID, "class", job.Class, "error", retryErr.Err)
		w.config.Metrics.JobSettled(metrics.OutcomeReleased)

	case errors.As(err, &failErr):
		w.bury(finishCtx, job, failErr.Error(), stackFor(err))

	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		op := func() error { return w.queue.Release(finishCtx, job) }
		if err := retryWithBackoff(finishCtx, *w.config.StorageRetry, op); err != nil {
			w.reportSettleFailure(job, "release", err)
			return
		}
		w.logger.Info("job released on shutdown", "job_id", job.ID, "class", job.Class)
		w.config.Metrics.JobSettled(metrics.OutcomeReleased)

	default:
		w.bury(finishCtx, job, err.Error(), stackFor(err))
	}
}

func (w *Worker) bury(ctx context.Context, job *core.Job, message, trace string) {
	op := func() error { return w.queue.Bury(ctx, job, core.Failure(message, trace)) }
	if err := retryWithBackoff(ctx, *w.config.StorageRetry, op); err != nil {
		w.reportSettleFailure(job, "bury", err)
		return
	}
	w.logger.Error("job failed permanently",
		"job_id", job.ID, "class", job.Class, "message", message)
	w.config.Metrics.JobSettled(metrics.OutcomeBuried)
}

func (w *Worker) reportSettleFailure(job *core.Job, op string, err error) {
	if errors.Is(err, core.ErrStale) {
		w.logger.Warn("job was already settled elsewhere",
			"job_id", job.ID, "op", op)
		return
	}
	w.logger.Error("failed to settle job after retries",
		"job_id", job.ID, "op", op, "error", err)
}

// panicError carries the stack captured where the handler's panic was
// recovered.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func stackFor(err error) string {
	var pe *panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	return string(debug.Stack())
}
