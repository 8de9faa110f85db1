package metrics

import "github.com/prometheus/client_golang/prometheus"

// EntryMetrics counts entry lifecycle outcomes.
type EntryMetrics struct {
	operations *prometheus.CounterVec
}

// NewEntryMetrics registers the entry counters on reg. A nil reg leaves them unregistered.
func NewEntryMetrics(reg prometheus.Registerer) *EntryMetrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bloglist_entry_operations_total",
		Help: "Entry lifecycle operations by outcome.",
	}, []string{"operation", "outcome"})
	if reg != nil {
		reg.MustRegister(ops)
	}
	return &EntryMetrics{operations: ops}
}

// Observe increments the counter for operation with the given outcome.
func (m *EntryMetrics) Observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
