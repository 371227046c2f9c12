// Package context provides context plumbing between the worker and handlers.
package context

import (
	"context"

	"github.com/groundq/groundq/pkg/core"
)

// JobContextKey is the key for storing job context in context.Context.
type JobContextKey struct{}

// JobContext holds the current job, the queue it came from, and the
// identity of the worker executing it.
type JobContext struct {
	Job      *core.Job
	Queue    core.Queue
	WorkerID string
}

// GetJobContext retrieves the job context from a context.Context.
func GetJobContext(ctx context.Context) *JobContext {
	if jc, ok := ctx.Value(JobContextKey{}).(*JobContext); ok {
		return jc
	}
	return nil
}

// WithJobContext adds job context to a context.Context.
func WithJobContext(ctx context.Context, jc *JobContext) context.Context {
	return context.WithValue(ctx, JobContextKey{}, jc)
}
