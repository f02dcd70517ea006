// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the sensor map API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - DeviceHandler: Device listing for the map
  - MeasurementHandler: Per-device measurement history for charts
  - StatusHandler: Fetch status, alert log, UI config
  - AdminHandler: Tracked-device management (add, remove, list)

Handlers are created via constructor functions that accept *sql.DB and Config:

	deviceHandler := handlers.NewDeviceHandler(db, cfg)

# Public Endpoints

	GET /api/devices                      → List (all devices with latest state)
	GET /api/measurements/{device_urn}    → History (?days=N, clamped to retention)
	GET /api/status                       → FetchStatus (per-device poll health)
	GET /api/alerts                       → Alerts (?limit=N, newest first)
	GET /api/config                       → UIConfig (map settings for the frontend)

# Admin Endpoints

Admin operations require the X-Admin-Key header:

	POST   /api/admin/devices               → AddDevice
	DELETE /api/admin/devices/{device_urn}  → RemoveDevice
	GET    /api/admin/devices               → ListDevices

Adding a device that is already tracked returns 200 with is_new false;
a new device returns 201 and is picked up on the next poll cycle.
Removing a device deletes its measurements and location history via
cascade but keeps its alert log entries for audit.
*/
package handlers
