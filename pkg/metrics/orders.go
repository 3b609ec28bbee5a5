package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "paintqueue"

// OrderMetrics counts order lifecycle events.
type OrderMetrics struct {
	transitions   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	cancellations prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Committed order updates by resulting status.",
	}, []string{"to_status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transition_failures_total",
		Help:      "Rejected or failed order operations by operation and error code.",
	}, []string{"operation", "code"})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_cancellations_total",
		Help:      "Orders cancelled and moved to the deleted archive.",
	})
	reg.MustRegister(transitions, failures, cancellations)
	return &OrderMetrics{
		transitions:   transitions,
		failures:      failures,
		cancellations: cancellations,
	}
}

func (m *OrderMetrics) IncTransition(toStatus string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}

func (m *OrderMetrics) IncFailure(operation, code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) IncCancellation() {
	if m == nil || m.cancellations == nil {
		return
	}
	m.cancellations.Inc()
}
