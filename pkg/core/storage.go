package core

import (
	"context"
	"time"
)

// Storage defines the persistence layer for job records. Implementations
// must keep ClaimNext safe for concurrent callers across processes, and
// every conditional mutation must report a lost race as ErrStale rather
// than succeeding silently.
type Storage interface {
	// Migrate creates the queue table and its indexes.
	Migrate(ctx context.Context) error

	// Insert persists a new record and writes the assigned id back.
	Insert(ctx context.Context, rec *Record) error

	// Find returns a record by id, (nil, nil) if absent.
	Find(ctx context.Context, id int64) (*Record, error)

	// ClaimNext claims the next eligible pending record on the queue and
	// moves it to RUNNING, stamping executed and clearing finished. Among
	// eligible records the latest scheduled one is claimed first, not the
	// oldest. It returns (nil, nil) when nothing is eligible or when the
	// claim was lost to a concurrent consumer.
	ClaimNext(ctx context.Context, queue string) (*Record, error)

	// Remove hard-deletes a record. Removing an absent record is not an
	// error.
	Remove(ctx context.Context, id int64) error

	// MarkDeleted moves a RUNNING record to DELETED, stamping finished.
	MarkDeleted(ctx context.Context, id int64) error

	// MarkBuried moves a RUNNING record to BURIED, stamping finished and
	// recording the failure diagnostics.
	MarkBuried(ctx context.Context, id int64, message, trace string) error

	// Reschedule moves a RUNNING record back to PENDING with a new
	// scheduled time and payload, clearing finished and the diagnostics.
	Reschedule(ctx context.Context, id int64, scheduled time.Time, data string) error

	// RecoverAbandoned returns to PENDING every RUNNING record on the
	// queue that was claimed before cutoff and never finished. It reports
	// how many rows moved.
	RecoverAbandoned(ctx context.Context, queue string, cutoff time.Time) (int64, error)

	// PurgeFinished removes the queue's records of the given terminal
	// status whose finished time is strictly before cutoff. It reports how
	// many rows were removed.
	PurgeFinished(ctx context.Context, queue string, status Status, cutoff time.Time) (int64, error)

	// Stats counts the queue's records by status.
	Stats(ctx context.Context, queue string) (map[Status]int64, error)
}

// Queue is the capability set of an engine bound to a single queue name.
// *queue.Queue is the canonical implementation; the worker and sweeper
// accept this interface so tests can substitute their own.
type Queue interface {
	// Name returns the queue name the engine is bound to.
	Name() string

	// Push inserts a new PENDING job and assigns job.ID.
	Push(ctx context.Context, job *Job, opts ...Option) error

	// Pop claims the next eligible job, (nil, nil) when there is none.
	Pop(ctx context.Context) (*Job, error)

	// Peek reads a job by id regardless of its status or queue.
	Peek(ctx context.Context, id int64) (*Job, error)

	// Delete finishes a claimed job successfully.
	Delete(ctx context.Context, job *Job) error

	// Bury parks a claimed job as permanently failed.
	Bury(ctx context.Context, job *Job, opts ...Option) error

	// Release returns a claimed job to the queue for another attempt.
	Release(ctx context.Context, job *Job, opts ...Option) error

	// Recover returns to PENDING every job that has been RUNNING for
	// longer than window without finishing.
	Recover(ctx context.Context, window time.Duration) (int64, error)

	// Purge removes terminal rows older than their retention.
	Purge(ctx context.Context, opts ...PurgeOption) (int64, error)

	// Stats counts the queue's records by status.
	Stats(ctx context.Context) (map[Status]int64, error)
}
