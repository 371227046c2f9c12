package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/metrics"
	"github.com/groundq/groundq/pkg/security"
)

// Default retentions applied by New. Deleted rows are removed outright;
// buried rows stay for inspection until purged explicitly.
const (
	DefaultDeletedRetention = core.RetentionDisabled
	DefaultBuriedRetention  = core.RetentionUnlimited
)

// Queue is the engine. Every operation works against one queue name inside
// the shared table; engines on different names share a table without seeing
// each other's jobs.
type Queue struct {
	storage core.Storage
	name    string
	metrics *metrics.Metrics

	deletedRetention core.Retention
	buriedRetention  core.Retention
}

// QueueOption configures a Queue at construction.
type QueueOption interface {
	applyQueue(*Queue)
}

type queueOptionFunc func(*Queue)

func (f queueOptionFunc) applyQueue(q *Queue) { f(q) }

// WithDeletedRetention sets how long successfully finished rows are kept.
func WithDeletedRetention(r core.Retention) QueueOption {
	return queueOptionFunc(func(q *Queue) {
		q.deletedRetention = r
	})
}

// WithBuriedRetention sets how long buried rows are kept.
func WithBuriedRetention(r core.Retention) QueueOption {
	return queueOptionFunc(func(q *Queue) {
		q.buriedRetention = r
	})
}

// WithMetrics instruments the engine's push and pop activity.
func WithMetrics(m *metrics.Metrics) QueueOption {
	return queueOptionFunc(func(q *Queue) {
		q.metrics = m
	})
}

// New creates an engine bound to the named queue.
// Queue names must be alphanumeric (starting with a letter), max 255 chars.
func New(s core.Storage, name string, opts ...QueueOption) (*Queue, error) {
	if err := security.ValidateQueueName(name); err != nil {
		return nil, err
	}

	q := &Queue{
		storage:          s,
		name:             name,
		deletedRetention: DefaultDeletedRetention,
		buriedRetention:  DefaultBuriedRetention,
	}
	for _, opt := range opts {
		opt.applyQueue(q)
	}
	return q, nil
}

// Name returns the queue name the engine is bound to.
func (q *Queue) Name() string {
	return q.name
}

// Storage returns the underlying storage.
func (q *Queue) Storage() core.Storage {
	return q.storage
}

// DeletedRetention returns the retention applied to deleted rows.
func (q *Queue) DeletedRetention() core.Retention {
	return q.deletedRetention
}

// BuriedRetention returns the retention applied to buried rows.
func (q *Queue) BuriedRetention() core.Retention {
	return q.buriedRetention
}

// Push inserts the job as a new PENDING row and assigns job.ID. The row
// becomes claimable once its scheduled time passes: now by default, later
// with Delay or At.
func (q *Queue) Push(ctx context.Context, job *core.Job, opts ...core.Option) error {
	if err := security.ValidateClass(job.Class); err != nil {
		return err
	}
	if err := security.ValidateContent(job.Content); err != nil {
		return err
	}

	options := core.NewOptions()
	for _, opt := range opts {
		opt.Apply(options)
	}

	data, err := job.Envelope()
	if err != nil {
		return err
	}

	now := time.Now()
	rec := &core.Record{
		Queue:     q.name,
		Status:    core.StatusPending,
		Created:   now,
		Scheduled: options.ScheduledFor(now),
		Data:      data,
	}
	if err := q.storage.Insert(ctx, rec); err != nil {
		return fmt.Errorf("groundq: failed to push: %w", err)
	}

	job.ID = rec.ID
	job.Queue = q.name
	q.metrics.Pushed()
	return nil
}

// Pop claims the next eligible job, (nil, nil) when nothing is ready. Among
// eligible jobs the one with the latest scheduled time is claimed first, not
// the oldest. Terminal rows past their retention are purged first, so a
// queue that is being consumed keeps its own table clean.
//
// A claimed row whose payload cannot be decoded yields a *core.PayloadError;
// the row stays RUNNING and the recover sweep returns it to the queue once
// the window lapses.
func (q *Queue) Pop(ctx context.Context) (*core.Job, error) {
	if _, err := q.Purge(ctx); err != nil {
		return nil, err
	}

	rec, err := q.storage.ClaimNext(ctx, q.name)
	if err != nil {
		return nil, fmt.Errorf("groundq: failed to pop: %w", err)
	}
	if rec == nil {
		q.metrics.EmptyPoll()
		return nil, nil
	}
	q.metrics.Claimed()
	return core.DecodeJob(rec)
}

// Peek reads a job by id, regardless of its status or queue. Absent rows
// yield core.ErrNotFound.
func (q *Queue) Peek(ctx context.Context, id int64) (*core.Job, error) {
	rec, err := q.storage.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("groundq: failed to peek: %w", err)
	}
	if rec == nil {
		return nil, core.ErrNotFound
	}
	return core.DecodeJob(rec)
}

// Delete finishes a claimed job successfully. With retention disabled the
// row is hard-removed, no questions asked; otherwise the row is marked
// DELETED, which requires it to still be RUNNING and reports core.ErrStale
// when another actor got there first.
func (q *Queue) Delete(ctx context.Context, job *core.Job) error {
	if q.deletedRetention.IsDisabled() {
		if err := q.storage.Remove(ctx, job.ID); err != nil {
			return fmt.Errorf("groundq: failed to delete job %d: %w", job.ID, err)
		}
		return nil
	}

	if err := q.storage.MarkDeleted(ctx, job.ID); err != nil {
		if errors.Is(err, core.ErrStale) {
			return err
		}
		return fmt.Errorf("groundq: failed to delete job %d: %w", job.ID, err)
	}
	return nil
}

// Bury parks a claimed job as permanently failed, recording the diagnostics
// given via Failure. The same retention split as Delete applies, with the
// buried retention.
func (q *Queue) Bury(ctx context.Context, job *core.Job, opts ...core.Option) error {
	options := core.NewOptions()
	for _, opt := range opts {
		opt.Apply(options)
	}

	if q.buriedRetention.IsDisabled() {
		if err := q.storage.Remove(ctx, job.ID); err != nil {
			return fmt.Errorf("groundq: failed to bury job %d: %w", job.ID, err)
		}
		return nil
	}

	if err := q.storage.MarkBuried(ctx, job.ID, options.Message, options.Trace); err != nil {
		if errors.Is(err, core.ErrStale) {
			return err
		}
		return fmt.Errorf("groundq: failed to bury job %d: %w", job.ID, err)
	}
	return nil
}

// Release returns a claimed job to the queue for another attempt, persisting
// the job's current payload. Mutate the job's content before releasing to
// carry state into the retry; schedule the retry with Delay or At.
func (q *Queue) Release(ctx context.Context, job *core.Job, opts ...core.Option) error {
	if err := security.ValidateContent(job.Content); err != nil {
		return err
	}

	options := core.NewOptions()
	for _, opt := range opts {
		opt.Apply(options)
	}

	data, err := job.Envelope()
	if err != nil {
		return err
	}

	scheduled := options.ScheduledFor(time.Now())
	if err := q.storage.Reschedule(ctx, job.ID, scheduled, data); err != nil {
		if errors.Is(err, core.ErrStale) {
			return err
		}
		return fmt.Errorf("groundq: failed to release job %d: %w", job.ID, err)
	}
	return nil
}

// Recover returns to PENDING every job that has been RUNNING for longer
// than window without finishing, covering consumers that died mid-job. It
// reports how many jobs moved. Run it on a cadence comfortably longer than
// the slowest legitimate job, or fresh claims get yanked back mid-flight.
func (q *Queue) Recover(ctx context.Context, window time.Duration) (int64, error) {
	cutoff := time.Now().Add(-window)
	moved, err := q.storage.RecoverAbandoned(ctx, q.name, cutoff)
	if err != nil {
		return 0, fmt.Errorf("groundq: failed to recover: %w", err)
	}
	return moved, nil
}

// Purge removes terminal rows strictly older than their retention: the
// engine's configured retentions, or per-call overrides via PurgeDeleted
// and PurgeBuried. Unlimited retention skips the status entirely; disabled
// retention removes every finished row of that status.
func (q *Queue) Purge(ctx context.Context, opts ...core.PurgeOption) (int64, error) {
	options := &core.PurgeOptions{}
	for _, opt := range opts {
		opt.Apply(options)
	}

	deleted := q.deletedRetention
	if options.Deleted != nil {
		deleted = *options.Deleted
	}
	buried := q.buriedRetention
	if options.Buried != nil {
		buried = *options.Buried
	}

	now := time.Now()
	targets := []struct {
		status    core.Status
		retention core.Retention
	}{
		{core.StatusDeleted, deleted},
		{core.StatusBuried, buried},
	}

	var total int64
	for _, target := range targets {
		if target.retention.IsUnlimited() {
			continue
		}
		cutoff := now
		if !target.retention.IsDisabled() {
			cutoff = now.Add(-target.retention.Duration())
		}
		n, err := q.storage.PurgeFinished(ctx, q.name, target.status, cutoff)
		if err != nil {
			return total, fmt.Errorf("groundq: failed to purge %s rows: %w", target.status, err)
		}
		total += n
	}
	return total, nil
}

// Stats counts the queue's records by status.
func (q *Queue) Stats(ctx context.Context) (map[core.Status]int64, error) {
	stats, err := q.storage.Stats(ctx, q.name)
	if err != nil {
		return nil, fmt.Errorf("groundq: failed to read stats: %w", err)
	}
	return stats, nil
}
