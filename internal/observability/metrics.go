// File: internal/observability/metrics.go
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "socialbot"

// Metrics holds the Prometheus collectors for navigation outcomes and likes.
type Metrics struct {
	registry   *prometheus.Registry
	navigation *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	likes      *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		navigation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "navigations_total",
			Help:      "Goto actions by destination kind and status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "navigation_duration_seconds",
			Help:      "Time spent waiting for the browser to settle a goto action.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "likes_total",
			Help:      "Posts liked, by mode.",
		}, []string{"mode"}),
	}
	m.registry.MustRegister(m.navigation, m.duration, m.likes)
	return m
}

// ObserveNavigation records one settled goto action.
func (m *Metrics) ObserveNavigation(kind string, ok bool, elapsed time.Duration) {
	status := "failure"
	if ok {
		status = "success"
	}
	m.navigation.WithLabelValues(kind, status).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveLike records one like issued by mode.
func (m *Metrics) ObserveLike(mode string) {
	m.likes.WithLabelValues(mode).Inc()
}

// Gatherer exposes the private registry, mostly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
