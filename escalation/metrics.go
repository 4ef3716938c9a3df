// Copyright (c) 2023 Colin McRae

package escalation

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts attempts of escalating computations, labelled by invariant
type Metrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	retVal := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arithinv",
			Subsystem: "escalation",
			Name:      "attempts_total",
			Help:      "Fixed-precision attempts made",
		}, []string{"invariant"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arithinv",
			Subsystem: "escalation",
			Name:      "successes_total",
			Help:      "Fixed-precision attempts that succeeded",
		}, []string{"invariant"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arithinv",
			Subsystem: "escalation",
			Name:      "skipped_total",
			Help:      "Attempts skipped because they were recorded as failures",
		}, []string{"invariant"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arithinv",
			Subsystem: "escalation",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of fixed-precision attempts",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"invariant"}),
	}
	for _, collector := range []prometheus.Collector{
		retVal.attempts, retVal.successes, retVal.skipped, retVal.duration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("NewMetrics: %w", err)
		}
	}
	return retVal, nil
}

func (m *Metrics) observeAttempt(invariant string, success bool, seconds float64) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(invariant).Inc()
	if success {
		m.successes.WithLabelValues(invariant).Inc()
	}
	m.duration.WithLabelValues(invariant).Observe(seconds)
}

func (m *Metrics) observeSkip(invariant string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(invariant).Inc()
}
