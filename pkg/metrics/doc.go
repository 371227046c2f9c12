// Package metrics provides Prometheus instrumentation for queue activity.
//
// Metrics are optional everywhere: the queue, worker and sweeper accept a
// *Metrics via their options and every method tolerates a nil receiver.
// Collectors carry the queue name as a const label so one registry can
// serve several queues side by side.
package metrics
