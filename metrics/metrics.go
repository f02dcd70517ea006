// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. A single instance is
// created in main and shared by the fetcher, alerter, and HTTP middleware.
type Metrics struct {
	registry *prometheus.Registry

	FetchCycles          prometheus.Counter
	FetchErrors          *prometheus.CounterVec
	MeasurementsInserted *prometheus.CounterVec
	LocationsInserted    *prometheus.CounterVec
	RecordsSkipped       *prometheus.CounterVec
	LastReading          *prometheus.GaugeVec
	AlertsSent           *prometheus.CounterVec
	AlertsSuppressed     prometheus.Counter
	RetentionDeleted     *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates a metrics set on a fresh registry with the standard Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		FetchCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radmap_fetch_cycles_total",
			Help: "Completed poll cycles across all devices.",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_fetch_errors_total",
			Help: "Failed device fetches.",
		}, []string{"device_urn"}),
		MeasurementsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_measurements_inserted_total",
			Help: "New measurement rows inserted (duplicates excluded).",
		}, []string{"device_urn"}),
		LocationsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_locations_inserted_total",
			Help: "New location rows inserted (duplicates excluded).",
		}, []string{"device_urn"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_upstream_records_skipped_total",
			Help: "Malformed upstream records dropped during parsing.",
		}, []string{"device_urn"}),
		LastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "radmap_last_reading_cpm",
			Help: "Most recent radiation reading per device, in CPM.",
		}, []string{"device_urn"}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_alerts_sent_total",
			Help: "Alert notifications dispatched.",
		}, []string{"channel"}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radmap_alerts_suppressed_total",
			Help: "Alerts suppressed by the per-device cooldown.",
		}),
		RetentionDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_retention_rows_deleted_total",
			Help: "Rows removed by the retention janitor.",
		}, []string{"table"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radmap_http_requests_total",
			Help: "HTTP requests by method, route and status class.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radmap_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.FetchCycles, m.FetchErrors, m.MeasurementsInserted, m.LocationsInserted,
		m.RecordsSkipped, m.LastReading, m.AlertsSent, m.AlertsSuppressed,
		m.RetentionDeleted, m.HTTPRequests, m.HTTPDuration,
	)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
