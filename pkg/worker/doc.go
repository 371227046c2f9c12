// Package worker provides the Worker type for job processing.
//
// This package includes:
//   - Worker: claims jobs from a queue and drives them through handlers
//   - WorkerOption: concurrency, polling, rate limiting, maintenance
//   - Outcome classification: delete on success, release on RetryError,
//     bury on FailError, unhandled error or panic; jobs interrupted by
//     shutdown are released
//
// Most users should import the root package github.com/groundq/groundq
// which re-exports the worker and its option functions.
package worker
