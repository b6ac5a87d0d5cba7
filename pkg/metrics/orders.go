package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts checkout and cancellation outcomes.
type OrderMetrics struct {
	placed   prometheus.Counter
	canceled prometheus.Counter
	rejected *prometheus.CounterVec
	units    prometheus.Counter
}

// NewOrderMetrics registers the order collectors on reg. A nil registerer
// yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders committed at checkout.",
		}),
		canceled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "canceled_total",
			Help:      "Orders canceled with stock restored.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Checkout attempts rolled back, by error code.",
		}, []string{"code"}),
		units: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "units_sold_total",
			Help:      "Item units decremented from stock by checkout.",
		}),
	}
	reg.MustRegister(m.placed, m.canceled, m.rejected, m.units)
	return m
}

// Placed records a committed order of the given unit count.
func (m *OrderMetrics) Placed(units int) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
	if units > 0 {
		m.units.Add(float64(units))
	}
}

// Canceled records a committed cancellation.
func (m *OrderMetrics) Canceled() {
	if m == nil || m.canceled == nil {
		return
	}
	m.canceled.Inc()
}

// Rejected records a checkout rolled back with code.
func (m *OrderMetrics) Rejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}
