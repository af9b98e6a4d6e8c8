// Package metrics provides Prometheus collectors for the counter service.
// Each Metrics value owns a private registry so servers and tests never
// collide on the default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Increment outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics holds the service collectors.
type Metrics struct {
	registry      *prometheus.Registry
	increments    *prometheus.CounterVec
	storeDuration prometheus.Histogram
}

// New creates collectors registered on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		increments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jogadas_increments_total",
			Help: "Increment requests by outcome.",
		}, []string{"outcome"}),
		storeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jogadas_store_duration_seconds",
			Help:    "Duration of atomic increment round trips to the store.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
	}
	reg.MustRegister(
		m.increments,
		m.storeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Inc records one increment request with the given outcome.
func (m *Metrics) Inc(outcome string) {
	m.increments.WithLabelValues(outcome).Inc()
}

// ObserveStore records how long a store round trip took.
func (m *Metrics) ObserveStore(d time.Duration) {
	m.storeDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
