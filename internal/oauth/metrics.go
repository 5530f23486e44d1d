package oauth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Callback outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidState   = "invalid_state"
	OutcomeExchangeFailed = "exchange_failed"
	OutcomeError          = "error"
)

// Metrics counts authorization round trips. A nil *Metrics records nothing.
type Metrics struct {
	AuthorizationsStarted prometheus.Counter
	Callbacks             *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		AuthorizationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gfe_oauth_authorizations_started_total",
			Help: "Authorization URLs issued",
		}),
		Callbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfe_oauth_callbacks_total",
			Help: "OAuth callbacks by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncAuthorizationStarted() {
	if m == nil {
		return
	}
	m.AuthorizationsStarted.Inc()
}

func (m *Metrics) IncCallback(outcome string) {
	if m == nil {
		return
	}
	m.Callbacks.WithLabelValues(outcome).Inc()
}
