// Package maintain provides the background sweep that keeps a queue healthy.
//
// The Sweeper runs two repairs on a schedule: Recover returns jobs whose
// consumer died mid-flight to the queue, and Purge removes terminal rows
// past their retention. Run it from a worker (worker.WithMaintenance) or
// standalone; Sweep is the one-shot form for scripts and embedders.
package maintain
