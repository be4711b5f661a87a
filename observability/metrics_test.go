package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetryMetricsRegisters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewRetryMetrics("", reg)
	require.NotNil(t, m)

	m.ObserveAttempt("fetch")
	m.ObserveRetry("fetch", 50*time.Millisecond)
	m.ObserveOutcome("fetch", OutcomeExhausted)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "retry_attempts_total")
	assert.Contains(t, names, "retry_retries_total")
	assert.Contains(t, names, "retry_outcomes_total")
	assert.Contains(t, names, "retry_backoff_duration_seconds")
}

func TestRetryMetricsCounts(t *testing.T) {
	t.Parallel()

	m := NewRetryMetrics("custom", prometheus.NewRegistry())

	m.ObserveAttempt("op")
	m.ObserveAttempt("op")
	m.ObserveRetry("op", time.Millisecond)
	m.ObserveOutcome("op", OutcomeSuccess)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.attemptsTotal.WithLabelValues("op")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.retriesTotal.WithLabelValues("op")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outcomesTotal.WithLabelValues("op", OutcomeSuccess)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.outcomesTotal.WithLabelValues("op", OutcomeExhausted)))
}

func TestNewRetryMetricsNilRegisterer(t *testing.T) {
	t.Parallel()

	m := NewRetryMetrics("unregistered", nil)
	require.NotNil(t, m)

	// Usable even when never registered.
	m.ObserveAttempt("op")
	m.ObserveOutcome("op", OutcomeCancelled)
}
