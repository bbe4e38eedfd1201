package querycache

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache lookups. One instance may be shared by many caches.
type Metrics struct {
	lookups  *prometheus.CounterVec
	loads    *prometheus.HistogramVec
	settled  *prometheus.CounterVec
	evicted  prometheus.Counter
	registry []prometheus.Collector
}

// NewMetrics creates the collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "querycache_lookups_total",
			Help: "Cache lookups by outcome (hit, miss, join).",
		}, []string{"outcome"}),
		loads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "querycache_load_duration_seconds",
			Help:    "Duration of store loads started by the cache.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "querycache_settled_total",
			Help: "Completed loads by what happened to their result (stored, superseded, discarded, failed).",
		}, []string{"outcome"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "querycache_evicted_total",
			Help: "Idle stale entries dropped by the sweeper.",
		}),
	}
	m.registry = []prometheus.Collector{m.lookups, m.loads, m.settled, m.evicted}
	if reg != nil {
		reg.MustRegister(m.registry...)
	}
	return m
}

// Collectors returns the underlying collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return m.registry
}

func (m *Metrics) lookup(outcome string) {
	if m != nil {
		m.lookups.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) load(kind string, seconds float64) {
	if m != nil {
		m.loads.WithLabelValues(kind).Observe(seconds)
	}
}

func (m *Metrics) settle(outcome string) {
	if m != nil {
		m.settled.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) evict(n int) {
	if m != nil {
		m.evicted.Add(float64(n))
	}
}
