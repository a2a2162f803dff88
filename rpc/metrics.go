package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ledger operations by outcome so operators can watch failure
// rates per operation without scraping logs.
type Metrics struct {
	operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pawnpool",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations processed, labelled by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
