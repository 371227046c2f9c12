// Package queue provides the Queue engine for durable job orchestration.
//
// This package includes:
//   - Queue: the engine binding a queue name to a storage backend
//   - QueueOption: retention configuration for deleted and buried rows
//
// A Queue exposes the full job lifecycle: Push, Pop, Peek, Delete, Bury,
// Release, Recover, Purge and Stats. Several engines may share one table
// under different queue names without interfering.
//
// Most users should import the root package github.com/groundq/groundq
// which re-exports Queue and all option functions.
package queue
