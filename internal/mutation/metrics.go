package mutation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records mutation outcomes.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mutations_total",
			Help: "Mutations by name and final state.",
		}, []string{"mutation", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mutation_duration_seconds",
			Help:    "Time from snapshot to commit or rollback.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mutation"}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes, m.duration)
	}
	return m
}

func (m *Metrics) observe(name string, s State, d time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(name, string(s)).Inc()
	m.duration.WithLabelValues(name).Observe(d.Seconds())
}
