package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the jobs counter.
const (
	OutcomeDeleted  = "deleted"
	OutcomeBuried   = "buried"
	OutcomeReleased = "released"
)

// Metrics instruments one queue's activity. All methods are safe to call on
// a nil receiver, so instrumentation can stay optional at the call sites.
type Metrics struct {
	pushed     prometheus.Counter
	claims     prometheus.Counter
	emptyPolls prometheus.Counter
	jobs       *prometheus.CounterVec
	recovered  prometheus.Counter
	purged     prometheus.Counter
	duration   prometheus.Histogram
}

// New creates the queue's collectors and registers them with reg. The queue
// name is attached as a const label, so one registry can carry several
// queues. A nil reg skips registration.
func New(reg prometheus.Registerer, queue string) *Metrics {
	labels := prometheus.Labels{"queue": queue}

	m := &Metrics{
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "groundq_pushed_total",
			Help:        "Jobs pushed onto the queue.",
			ConstLabels: labels,
		}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "groundq_claims_total",
			Help:        "Jobs claimed from the queue.",
			ConstLabels: labels,
		}),
		emptyPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "groundq_empty_polls_total",
			Help:        "Pop attempts that found nothing eligible.",
			ConstLabels: labels,
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "groundq_jobs_total",
			Help:        "Jobs settled by the worker, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		recovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "groundq_recovered_total",
			Help:        "Abandoned jobs returned to the queue by the sweep.",
			ConstLabels: labels,
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "groundq_purged_total",
			Help:        "Terminal rows removed past their retention.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "groundq_job_duration_seconds",
			Help:        "Handler execution time.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.pushed, m.claims, m.emptyPolls, m.jobs, m.recovered, m.purged, m.duration)
	}
	return m
}

// Pushed counts a successful push.
func (m *Metrics) Pushed() {
	if m == nil {
		return
	}
	m.pushed.Inc()
}

// Claimed counts a pop that claimed a job.
func (m *Metrics) Claimed() {
	if m == nil {
		return
	}
	m.claims.Inc()
}

// EmptyPoll counts a pop that found nothing eligible.
func (m *Metrics) EmptyPoll() {
	if m == nil {
		return
	}
	m.emptyPolls.Inc()
}

// JobSettled counts a worker outcome: OutcomeDeleted, OutcomeBuried or
// OutcomeReleased.
func (m *Metrics) JobSettled(outcome string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(outcome).Inc()
}

// Recovered counts jobs returned to the queue by a recover sweep.
func (m *Metrics) Recovered(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.recovered.Add(float64(n))
}

// Purged counts terminal rows removed by a purge.
func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}

// ObserveJobDuration records handler execution time.
func (m *Metrics) ObserveJobDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
