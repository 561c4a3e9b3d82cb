package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts endpoint outcomes and provider call latency.
type Metrics struct {
	gatherer prometheus.Gatherer
	requests *prometheus.CounterVec
	provider *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seo_generate_requests_total",
			Help: "Enrichment endpoint requests by outcome.",
		}, []string{"outcome"}),
		provider: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seo_provider_call_seconds",
			Help:    "Completion provider call latency by outcome.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.provider)
	return m
}

// ObserveProvider matches generator.WithObserver.
func (m *Metrics) ObserveProvider(outcome string, took time.Duration) {
	m.provider.WithLabelValues(outcome).Observe(took.Seconds())
}

func (m *Metrics) request(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}
