// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database opening and schema creation.

# Opening

Open returns a SQLite connection with foreign keys, WAL, and a busy
timeout enabled:

	conn, err := db.Open("safecast_data.db")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - devices: Current device state, refreshed each poll cycle
  - measurements: Radiation readings, deduplicated on (device_urn, when_captured)
  - locations: Location history, deduplicated the same way
  - device_fetch_status: Per-device poll bookkeeping
  - alert_state: Per-device cooldown state
  - alert_log: Dispatched notifications

# Relationships

	devices 1──* measurements
	devices 1──* locations

Measurements and locations cascade on device delete. Fetch status and
the alert log reference devices by URN without a foreign key, so the
alert history survives device removal.
*/
package db
