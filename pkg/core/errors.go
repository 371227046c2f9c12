package core

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors
var (
	ErrInvalidQueueName = errors.New("groundq: invalid queue name (must be alphanumeric, start with letter)")
	ErrQueueNameTooLong = errors.New("groundq: queue name too long")
	ErrInvalidClass     = errors.New("groundq: invalid job class (must be alphanumeric, start with letter)")
	ErrClassTooLong     = errors.New("groundq: job class too long")
	ErrContentTooLarge  = errors.New("groundq: job content exceeds size limit")
)

// Lifecycle errors
var (
	// ErrNotFound reports that no record exists with the requested id.
	ErrNotFound = errors.New("groundq: job not found")

	// ErrStale reports a lost race on a conditional transition: the row was
	// already moved out of RUNNING by another consumer or a recover sweep.
	// The caller's view of the job is out of date; nothing is broken.
	ErrStale = errors.New("groundq: job state is stale")
)

// PayloadError reports a record whose data column could not be decoded back
// into a job. The row itself is intact; a pop casualty stays RUNNING and the
// recover sweep returns it to the queue.
type PayloadError struct {
	ID  int64
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("groundq: job %d payload is undecodable: %v", e.ID, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// RetryError indicates a handler outcome that should release the job back
// to the queue for another attempt.
type RetryError struct {
	Err   error
	Delay time.Duration
	At    *time.Time
}

func (e *RetryError) Error() string {
	if e.At != nil {
		return fmt.Sprintf("retry at %s: %v", e.At.Format(time.RFC3339), e.Err)
	}
	return fmt.Sprintf("retry after %v: %v", e.Delay, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// RetryAfter wraps a handler error to request the job be released back to
// the queue after a delay.
func RetryAfter(d time.Duration, err error) error {
	return &RetryError{Err: err, Delay: d}
}

// RetryAt wraps a handler error to request the job be released back to the
// queue at an exact time.
func RetryAt(t time.Time, err error) error {
	return &RetryError{Err: err, At: &t}
}

// FailError indicates a handler outcome that should bury the job.
type FailError struct {
	Err error
}

func (e *FailError) Error() string {
	return fmt.Sprintf("fail: %v", e.Err)
}

func (e *FailError) Unwrap() error {
	return e.Err
}

// Fail wraps a handler error to mark the job permanently failed; the worker
// buries it with the error text as its message.
func Fail(err error) error {
	return &FailError{Err: err}
}
