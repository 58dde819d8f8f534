package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record registry.
type Metrics struct {
	RecordsUploaded prometheus.Counter
	RecordsDeleted  prometheus.Counter
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		RecordsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medchain_records_uploaded_total",
			Help: "Total number of records registered",
		}),
		RecordsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medchain_records_deleted_total",
			Help: "Total number of records soft-deleted",
		}),
	}
}

// IncrementUploaded increments the uploaded counter. Nil-safe.
func (m *Metrics) IncrementUploaded() {
	if m != nil {
		m.RecordsUploaded.Inc()
	}
}

// IncrementDeleted increments the deleted counter. Nil-safe.
func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.RecordsDeleted.Inc()
	}
}
