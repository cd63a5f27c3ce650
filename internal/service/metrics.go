package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the order lifecycle collectors.
type Metrics struct {
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewMetrics creates the lifecycle collectors and registers them on reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_transitions_total",
			Help: "Total number of applied order status transitions",
		}, []string{"from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_transitions_rejected_total",
			Help: "Total number of rejected order status transitions",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.rejected)
	}
	return m
}
