// Package metrics provides Prometheus instrumentation for the request
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side counters. One instance is owned per
// janua.Client so that two clients in one process never clash on
// registration.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	RefreshesTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all client metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janua_client_requests_total",
				Help: "Total API requests by method and outcome status.",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "janua_client_request_duration_seconds",
				Help:    "Wall time of logical API requests including retries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janua_client_retries_total",
				Help: "Retry attempts by trigger (rate_limit, server_error, network, auth).",
			},
			[]string{"reason"},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janua_client_token_refreshes_total",
				Help: "Token refresh attempts by result.",
			},
			[]string{"result"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.RetriesTotal)
	reg.MustRegister(m.RefreshesTotal)

	return m
}

// Handler returns an http.Handler exposing this client's metrics, for
// applications that want to scrape them.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for callers that aggregate
// several registries into one scrape endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
