package estimate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts estimate outcomes. A nil *Metrics records nothing.
type Metrics struct {
	BackendTotal  prometheus.Counter
	FallbackTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		BackendTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gfe_estimate_backend_total",
			Help: "Estimates answered by the backend",
		}),
		FallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfe_estimate_fallback_total",
			Help: "Estimates synthesized locally, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) incBackend() {
	if m == nil {
		return
	}
	m.BackendTotal.Inc()
}

func (m *Metrics) incFallback(reason string) {
	if m == nil {
		return
	}
	m.FallbackTotal.WithLabelValues(reason).Inc()
}
