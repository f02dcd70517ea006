// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the sensor map server.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, m)

Every route is wrapped with request logging and Prometheus metrics.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Public API:

	GET /api/devices
	GET /api/measurements/{device_urn}
	GET /api/status
	GET /api/alerts
	GET /api/config

Admin (requires X-Admin-Key):

	POST   /api/admin/devices
	DELETE /api/admin/devices/{device_urn}
	GET    /api/admin/devices

Dashboard:

	GET /
	GET /static/
*/
package router
