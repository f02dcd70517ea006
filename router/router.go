// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/handlers"
	"github.com/louisbertrand/map-louis/metrics"
	"github.com/louisbertrand/map-louis/middleware"
	"github.com/louisbertrand/map-louis/web"
)

func NewRouter(db *sql.DB, cfg config.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	deviceHandler := handlers.NewDeviceHandler(db, cfg)
	measurementHandler := handlers.NewMeasurementHandler(db, cfg)
	statusHandler := handlers.NewStatusHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	route := func(pattern, label string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(m, label, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus exposition
	mux.Handle("GET /metrics", m.Handler())

	// Dashboard API (public)
	route("GET /api/devices", "/api/devices", deviceHandler.List)
	route("GET /api/measurements/{device_urn}", "/api/measurements/{device_urn}", measurementHandler.History)
	route("GET /api/status", "/api/status", statusHandler.FetchStatus)
	route("GET /api/alerts", "/api/alerts", statusHandler.Alerts)
	route("GET /api/config", "/api/config", statusHandler.UIConfig)

	// Device management (admin key required)
	route("POST /api/admin/devices", "/api/admin/devices", adminHandler.AddDevice)
	route("GET /api/admin/devices", "/api/admin/devices", adminHandler.ListDevices)
	route("DELETE /api/admin/devices/{device_urn}", "/api/admin/devices/{device_urn}", adminHandler.RemoveDevice)

	// Dashboard
	mux.Handle("GET /static/", web.Static())
	mux.HandleFunc("GET /{$}", web.Index)

	return mux
}
