package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access control list.
type Metrics struct {
	AccessGranted prometheus.Counter
	AccessRevoked prometheus.Counter
}

// New creates a new Metrics instance with all ACL metrics registered.
func New() *Metrics {
	return &Metrics{
		AccessGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medchain_access_granted_total",
			Help: "Total number of access grant operations",
		}),
		AccessRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medchain_access_revoked_total",
			Help: "Total number of access revoke operations",
		}),
	}
}

// IncrementGranted increments the grant counter. Nil-safe.
func (m *Metrics) IncrementGranted() {
	if m != nil {
		m.AccessGranted.Inc()
	}
}

// IncrementRevoked increments the revoke counter. Nil-safe.
func (m *Metrics) IncrementRevoked() {
	if m != nil {
		m.AccessRevoked.Inc()
	}
}
