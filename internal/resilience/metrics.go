package resilience

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BreakerState reports the current breaker state per target.
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pos_breaker_state",
			Help: "Current breaker state: 0=closed,1=open,2=half-open",
		},
		[]string{"target"},
	)
	// BreakerTransitions counts breaker state transitions.
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_breaker_transition_total",
			Help: "Count of breaker state transitions",
		},
		[]string{"target", "from", "to"},
	)
	// BreakerOpenedTotal counts transitions into the open state.
	BreakerOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_breaker_open_total",
			Help: "Number of times a breaker transitioned into open state",
		},
		[]string{"target"},
	)
)

var registerOnce sync.Once

// MustRegisterMetrics registers breaker collectors with the default registry.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
	})
}
