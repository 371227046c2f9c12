// Package jobctx provides public access to job context for handlers.
package jobctx

import (
	"context"

	"github.com/groundq/groundq/pkg/core"
	intctx "github.com/groundq/groundq/pkg/internal/context"
)

// JobFromContext returns the current Job from context, or nil if not in a
// job handler. Use this to get the job ID for logging or progress tracking.
func JobFromContext(ctx context.Context) *core.Job {
	jc := intctx.GetJobContext(ctx)
	if jc == nil {
		return nil
	}
	return jc.Job
}

// JobIDFromContext returns the current job ID from context, or 0 if not in
// a job handler.
func JobIDFromContext(ctx context.Context) int64 {
	job := JobFromContext(ctx)
	if job == nil {
		return 0
	}
	return job.ID
}

// QueueFromContext returns the queue the current job was claimed from, or
// nil if not in a job handler. Handlers use this to push follow-up jobs
// onto the same queue.
func QueueFromContext(ctx context.Context) core.Queue {
	jc := intctx.GetJobContext(ctx)
	if jc == nil {
		return nil
	}
	return jc.Queue
}

// WorkerIDFromContext returns the identity of the worker executing the
// current job, or empty string if not in a job handler.
func WorkerIDFromContext(ctx context.Context) string {
	jc := intctx.GetJobContext(ctx)
	if jc == nil {
		return ""
	}
	return jc.WorkerID
}
