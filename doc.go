// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the radiation sensor map server.

The server polls the Safecast telemetry API for a set of tracked Geiger
counter devices, stores their readings and location history in a local
SQLite database, and serves a map dashboard plus a JSON API over it.

# Starting the Server

The server runs with environment variables, an optional .env file, or a
YAML config file:

	ADMIN_KEY=secret DEVICE_URNS=geigiecast:63209 go run .

Or with a config file:

	go run . -config config.yaml

# Configuration

Required settings:

  - ADMIN_KEY: Secret for the device admin endpoints

Common settings:

  - PORT: Server port (default: 8000)
  - DATABASE_PATH: SQLite file path (default: safecast_data.db)
  - SAFECAST_API_BASE: Upstream API base URL (default: https://tt.safecast.org)
  - DEVICE_URNS: Comma-separated seed list of tracked devices
  - POLL_INTERVAL: Time between poll cycles (default: 5m)
  - MAX_DATA_DAYS: Retention and chart window in days (default: 30)
  - ALERTS_ENABLED / ALERT_THRESHOLD_CPM / ALERT_COOLDOWN: Threshold alerting

See the config package for the full list.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - safecast: Upstream API client with tolerant JSON decoding
  - fetcher: Background poll loop and retention janitor
  - alerts: Threshold evaluation with per-device cooldown
  - notify: Email (SMTP) and SMS (Twilio-compatible) channels
  - handlers: HTTP request handlers (devices, measurements, status, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Request/response types
  - auth: Admin key validation
  - db: Schema creation
  - config: Configuration loading and validation
  - metrics: Prometheus instrumentation
  - web: Embedded dashboard (Leaflet map + Chart.js)

See package documentation for each component.
*/
package main
