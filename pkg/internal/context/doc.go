// Package context provides internal context helpers for job execution.
//
// This package is internal and should not be imported directly.
// It carries the current job, its queue and the worker identity into
// handler execution; the public jobctx package exposes read access.
package context
