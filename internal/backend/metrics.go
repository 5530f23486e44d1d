package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the backend client instruments. A nil *Metrics records nothing.
type Metrics struct {
	AttemptsTotal  *prometheus.CounterVec   // attempts by outcome kind ("ok" on success)
	CallsTotal     *prometheus.CounterVec   // finished calls by outcome kind
	CallDuration   *prometheus.HistogramVec // whole call latency including backoff
	BackoffSeconds prometheus.Counter       // total time spent waiting between attempts
	TokensCleared  prometheus.Counter       // tokens dropped after a 401
}

// NewMetrics registers the backend instruments with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		AttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfe_backend_attempts_total",
			Help: "Backend request attempts by outcome",
		}, []string{"outcome"}),
		CallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gfe_backend_calls_total",
			Help: "Backend calls by final outcome",
		}, []string{"outcome"}),
		CallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gfe_backend_call_duration_seconds",
			Help:    "Duration of backend calls including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"outcome"}),
		BackoffSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gfe_backend_backoff_seconds_total",
			Help: "Total seconds spent in backoff between attempts",
		}),
		TokensCleared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gfe_backend_tokens_cleared_total",
			Help: "Access tokens cleared after the backend answered 401",
		}),
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return string(kind)
	}
	return "error"
}

func (m *Metrics) observeAttempt(err error) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeCall(err error, seconds float64) {
	if m == nil {
		return
	}
	o := outcome(err)
	m.CallsTotal.WithLabelValues(o).Inc()
	m.CallDuration.WithLabelValues(o).Observe(seconds)
}

func (m *Metrics) observeBackoff(seconds float64) {
	if m == nil {
		return
	}
	m.BackoffSeconds.Add(seconds)
}

func (m *Metrics) observeTokenCleared() {
	if m == nil {
		return
	}
	m.TokensCleared.Inc()
}
