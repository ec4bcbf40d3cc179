// Package observability exposes Prometheus metrics for the API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry so tests can build
// as many instances as they like.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insureclaim_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insureclaim_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insureclaim_events_published_total",
				Help: "Domain events handed to the broker.",
			},
			[]string{"type", "result"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insureclaim_external_errors_total",
				Help: "Failures talking to optional backends.",
			},
			[]string{"service"},
		),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) IncrEvent(eventType, result string) {
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
