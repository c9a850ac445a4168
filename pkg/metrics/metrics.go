package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weather_dashboard"

// Metrics groups the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	UpstreamCounter *prometheus.CounterVec
	CacheCounter    *prometheus.CounterVec
	BuildCounter    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		UpstreamCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Outbound API requests by host and status.",
			},
			[]string{"host", "status"},
		),
		CacheCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_cache_lookups_total",
				Help:      "Response cache lookups by result.",
			},
			[]string{"result"},
		),
		BuildCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_builds_total",
				Help:      "Dashboard builds by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.UpstreamCounter,
		m.CacheCounter,
		m.BuildCounter,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// The helpers below accept a nil receiver so collaborators can run without metrics.

func (m *Metrics) ObserveRequest(route, method string, status int) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveUpstream(host string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamCounter.WithLabelValues(host, label).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheCounter.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBuild(outcome string) {
	if m == nil {
		return
	}
	m.BuildCounter.WithLabelValues(outcome).Inc()
}
