// Package metrics exposes catalog pipeline counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boozescore"

// Metrics implements usecase.Recorder on a dedicated registry
type Metrics struct {
	registry       *prometheus.Registry
	cacheLookups   *prometheus.CounterVec
	catalogFetches *prometheus.CounterVec
	catalogSize    prometheus.Gauge
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by result (hit or miss).",
		}, []string{"result"}),
		catalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetches_total",
			Help:      "Remote catalog fetches by outcome (ok or error).",
		}, []string{"outcome"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Number of products in the last fetched catalog.",
		}),
	}

	m.registry.MustRegister(
		m.cacheLookups,
		m.catalogFetches,
		m.catalogSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CacheHit counts a fresh cache entry
func (m *Metrics) CacheHit() {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts an absent, stale or unreadable cache entry
func (m *Metrics) CacheMiss() {
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// CatalogFetched counts a successful fetch and records its size
func (m *Metrics) CatalogFetched(products int) {
	m.catalogFetches.WithLabelValues("ok").Inc()
	m.catalogSize.Set(float64(products))
}

// CatalogFetchFailed counts a failed fetch
func (m *Metrics) CatalogFetchFailed() {
	m.catalogFetches.WithLabelValues("error").Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
