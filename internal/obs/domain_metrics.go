package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutations counts cart mutations by operation.
	CartMutations *prometheus.CounterVec
	// TenderValidationFailures counts rejected tender submissions by field.
	TenderValidationFailures *prometheus.CounterVec
	// SalesSubmitted counts submission gate outcomes.
	SalesSubmitted *prometheus.CounterVec
	// StreamClients tracks connected register terminals.
	StreamClients prometheus.Gauge
	// StepperSteps counts hold-to-repeat quantity steps by direction.
	StepperSteps *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers POS domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})
		TenderValidationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tender_validation_failures_total",
			Help:      "Count of rejected tender submissions by failing field.",
		}, []string{"field"})
		SalesSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_submitted_total",
			Help:      "Count of sale submission outcomes.",
		}, []string{"profile", "result"})
		StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Currently connected register stream clients.",
		})
		StepperSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stepper_steps_total",
			Help:      "Quantity steps emitted by the hold-to-repeat control.",
		}, []string{"direction"})
		reg.MustRegister(CartMutations, TenderValidationFailures, SalesSubmitted, StreamClients, StepperSteps)
	})
}

// IncCartMutation records a cart mutation when metrics are registered.
func IncCartMutation(op string) {
	if CartMutations != nil {
		CartMutations.WithLabelValues(op).Inc()
	}
}

// IncTenderFailure records a rejected tender field when metrics are registered.
func IncTenderFailure(field string) {
	if TenderValidationFailures != nil {
		TenderValidationFailures.WithLabelValues(field).Inc()
	}
}

// IncSaleSubmitted records a submission outcome when metrics are registered.
func IncSaleSubmitted(profile, result string) {
	if SalesSubmitted != nil {
		SalesSubmitted.WithLabelValues(profile, result).Inc()
	}
}

// IncStepperStep records a hold-to-repeat step when metrics are registered.
func IncStepperStep(direction string) {
	if StepperSteps != nil {
		StepperSteps.WithLabelValues(direction).Inc()
	}
}

// AddStreamClients adjusts the connected terminal gauge when registered.
func AddStreamClients(delta float64) {
	if StreamClients != nil {
		StreamClients.Add(delta)
	}
}
