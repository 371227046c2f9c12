package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "default")

	m.Pushed()
	m.Pushed()
	m.Claimed()
	m.EmptyPoll()
	m.JobSettled(OutcomeDeleted)
	m.JobSettled(OutcomeBuried)
	m.Recovered(3)
	m.Purged(2)
	m.ObserveJobDuration(125 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pushed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emptyPolls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues(OutcomeDeleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues(OutcomeBuried)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.jobs.WithLabelValues(OutcomeReleased)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recovered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.purged))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 7)
}

func TestNew_NilRegistererSkipsRegistration(t *testing.T) {
	m := New(nil, "default")
	m.Pushed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushed))
}

func TestNew_QueueLabelAllowsMultipleQueues(t *testing.T) {
	reg := prometheus.NewRegistry()

	a := New(reg, "emails")
	b := New(reg, "invoices")

	a.Pushed()
	b.Pushed()
	b.Pushed()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.pushed))
	assert.Equal(t, 2.0, testutil.ToFloat64(b.pushed))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Pushed()
		m.Claimed()
		m.EmptyPoll()
		m.JobSettled(OutcomeReleased)
		m.Recovered(1)
		m.Purged(1)
		m.ObserveJobDuration(time.Second)
	})
}

func TestMetrics_NegativeCountsIgnored(t *testing.T) {
	m := New(nil, "default")

	m.Recovered(-1)
	m.Purged(0)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.recovered))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.purged))
}
