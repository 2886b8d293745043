// metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics captures authorization decisions and HTTP traffic of the backend.
type Metrics interface {
	IncDecision(operation, effect, code string)
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncDecision(string, string, string)             {}
func (Noop) ObserveRequest(string, string, string, float64) {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	decisions *prometheus.CounterVec
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	gatherer  prometheus.Gatherer
}

// NewProm registers the collectors on a fresh registry so several backends
// can live in one process (tests).
func NewProm(namespace string) *Prom {
	reg := prometheus.NewRegistry()
	p := &Prom{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Authorization decisions by operation, effect and error code",
		}, []string{"operation", "effect", "code"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	reg.MustRegister(p.decisions, p.requests, p.latency)
	return p
}

func (p *Prom) IncDecision(operation, effect, code string) {
	p.decisions.WithLabelValues(operation, effect, code).Inc()
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

// Handler returns an HTTP handler for /metrics.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
