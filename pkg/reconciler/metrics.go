package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the reconciler's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	saves      *prometheus.CounterVec
	checks     *prometheus.CounterVec
	heals      prometheus.Counter
	divergence prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surrealfocus",
			Subsystem: "environment",
			Name:      "saves_total",
			Help:      "Environment saves by trigger and result.",
		}, []string{"trigger", "result"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surrealfocus",
			Subsystem: "environment",
			Name:      "checks_total",
			Help:      "Automatic consistency checks by outcome.",
		}, []string{"outcome"}),
		heals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surrealfocus",
			Subsystem: "environment",
			Name:      "heals_total",
			Help:      "Successful self-heals toward the profile value.",
		}),
		divergence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "surrealfocus",
			Subsystem: "environment",
			Name:      "distinct_values",
			Help:      "Distinct non-empty environment values seen by the last status read.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.saves, m.checks, m.heals, m.divergence)
	}
	return m
}

func (m *Metrics) save(trigger string, err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(trigger, resultLabel(err)).Inc()
}

func (m *Metrics) check(o Outcome) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) healed() {
	if m == nil {
		return
	}
	m.heals.Inc()
}

func (m *Metrics) distinct(n int) {
	if m == nil {
		return
	}
	m.divergence.Set(float64(n))
}
