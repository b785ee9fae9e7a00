package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for client record mutations.
type Metrics struct {
	ClientsCreated       prometheus.Counter
	ClientsUpdated       prometheus.Counter
	ClientsDeleted       prometheus.Counter
	AddressEventsSent    prometheus.Counter
	AddressEventFailures prometheus.Counter
	UpdatesRejected      *prometheus.CounterVec
}

// New creates and registers all client metrics.
func New() *Metrics {
	return &Metrics{
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientele_clients_created_total",
			Help: "Total number of client records created",
		}),
		ClientsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientele_clients_updated_total",
			Help: "Total number of client record updates persisted",
		}),
		ClientsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientele_clients_deleted_total",
			Help: "Total number of client records deleted",
		}),
		AddressEventsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientele_address_events_sent_total",
			Help: "Total number of address-changed events published",
		}),
		AddressEventFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientele_address_event_failures_total",
			Help: "Total number of address-changed events that failed to publish",
		}),
		UpdatesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clientele_updates_rejected_total",
			Help: "Client updates rejected before any write, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementCreated()  { m.ClientsCreated.Inc() }
func (m *Metrics) IncrementUpdated()  { m.ClientsUpdated.Inc() }
func (m *Metrics) IncrementDeleted()  { m.ClientsDeleted.Inc() }
func (m *Metrics) IncrementEventSent() { m.AddressEventsSent.Inc() }
func (m *Metrics) IncrementEventFailure() {
	m.AddressEventFailures.Inc()
}

// IncrementRejected records an update blocked by validation or existence
// checks before any state changed.
func (m *Metrics) IncrementRejected(reason string) {
	m.UpdatesRejected.WithLabelValues(reason).Inc()
}
