package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for the outcomes counter.
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeAborted   = "aborted"
	OutcomeCancelled = "cancelled"
)

// RetryMetrics holds Prometheus metrics for retry sessions.
type RetryMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	backoffDuration *prometheus.HistogramVec
}

// NewRetryMetrics creates retry metrics and registers them with reg.
// An empty namespace defaults to "retry".
func NewRetryMetrics(namespace string, reg prometheus.Registerer) *RetryMetrics {
	if namespace == "" {
		namespace = "retry"
	}

	m := &RetryMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of operation attempts",
			},
			[]string{"operation"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Total number of retries after a failed attempt",
			},
			[]string{"operation"},
		),
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Terminal retry session outcomes",
			},
			[]string{"operation", "outcome"},
		),
		backoffDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backoff_duration_seconds",
				Help:      "Backoff delay between attempts",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"operation"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.attemptsTotal, m.retriesTotal, m.outcomesTotal, m.backoffDuration)
	}

	return m
}

// ObserveAttempt records one operation invocation.
func (m *RetryMetrics) ObserveAttempt(operation string) {
	m.attemptsTotal.WithLabelValues(operation).Inc()
}

// ObserveRetry records a retry decision and its backoff delay.
func (m *RetryMetrics) ObserveRetry(operation string, delay time.Duration) {
	m.retriesTotal.WithLabelValues(operation).Inc()
	m.backoffDuration.WithLabelValues(operation).Observe(delay.Seconds())
}

// ObserveOutcome records a terminal session outcome.
func (m *RetryMetrics) ObserveOutcome(operation, outcome string) {
	m.outcomesTotal.WithLabelValues(operation, outcome).Inc()
}
