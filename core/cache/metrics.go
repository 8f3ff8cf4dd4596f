package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of a Cache.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	entries       prometheus.Gauge
	operations    *prometheus.CounterVec
	evictions     prometheus.Counter
	artifactBytes prometheus.Histogram
}

// NewMetrics creates the cache collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reportgate_cache_entries",
			Help: "Number of reports currently cached",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgate_cache_operations_total",
			Help: "Cache operations by type and outcome",
		}, []string{"op", "result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reportgate_cache_evictions_total",
			Help: "Entries removed by the sweeper after exceeding the TTL",
		}),
		artifactBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reportgate_cache_artifact_bytes",
			Help:    "Size of cached artifacts",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
	for _, col := range []prometheus.Collector{m.entries, m.operations, m.evictions, m.artifactBytes} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) stored(size, bytes int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(size))
	m.operations.WithLabelValues("put", "ok").Inc()
	m.artifactBytes.Observe(float64(bytes))
}

func (m *Metrics) lookedUp(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.operations.WithLabelValues("get", result).Inc()
}

func (m *Metrics) deleted(size int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(size))
	m.operations.WithLabelValues("delete", "ok").Inc()
}

func (m *Metrics) swept(size, removed int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(size))
	m.evictions.Add(float64(removed))
}
