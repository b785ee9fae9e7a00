// Package metrics exposes Prometheus metrics for address validation and
// the circuit breaker guarding it. Metric names mirror the resilience
// metrics the original lookup integration exported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clientele/pkg/platform/circuit"
)

// Metrics holds the validation outcome counters.
type Metrics struct {
	ValidationOutcomes *prometheus.CounterVec
}

// New creates and registers the validation metrics.
func New() *Metrics {
	return &Metrics{
		ValidationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clientele_address_validation_outcomes_total",
			Help: "Address validation outcomes by kind (valid, invalid, skipped_degraded)",
		}, []string{"outcome"}),
	}
}

// RecordOutcome increments the counter for one validation outcome.
func (m *Metrics) RecordOutcome(outcome string) {
	m.ValidationOutcomes.WithLabelValues(outcome).Inc()
}

// RegisterBreaker registers gauge functions reading the breaker snapshot
// on every scrape, so circuit state is observable without the breaker
// pushing updates.
func RegisterBreaker(b *circuit.Breaker) {
	labels := prometheus.Labels{"name": b.Name()}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "clientele_circuitbreaker_state",
		Help:        "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Metrics().State)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "clientele_circuitbreaker_failure_rate",
		Help:        "Failure rate over the sliding window, in percent",
		ConstLabels: labels,
	}, func() float64 {
		return b.Metrics().FailureRate
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "clientele_circuitbreaker_slow_call_rate",
		Help:        "Slow-call rate over the sliding window, in percent",
		ConstLabels: labels,
	}, func() float64 {
		return b.Metrics().SlowCallRate
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "clientele_circuitbreaker_buffered_calls",
		Help:        "Number of calls currently buffered in the sliding window",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Metrics().BufferedCalls)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "clientele_circuitbreaker_not_permitted_calls_total",
		Help:        "Calls rejected while the circuit was open",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Metrics().NotPermittedCalls)
	})
}
