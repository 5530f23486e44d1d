package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gfe/internal/tenant/models"
)

// Metrics counts how requests spread across serving domains.
type Metrics struct {
	Resolutions *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfe_tenant_resolutions_total",
			Help: "Requests resolved to a tenant, by environment and whether the host is a known domain",
		}, []string{"environment", "known"}),
	}
}

func (m *Metrics) IncResolution(env models.Environment, known bool) {
	if m == nil {
		return
	}
	label := "false"
	if known {
		label = "true"
	}
	m.Resolutions.WithLabelValues(string(env), label).Inc()
}
