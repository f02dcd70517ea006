// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the SQLite database at path with the pragmas the service
// depends on (foreign keys, WAL, busy timeout).
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Devices (current state, refreshed on every poll cycle)
CREATE TABLE IF NOT EXISTS devices (
    device_urn TEXT PRIMARY KEY,
    device_id INTEGER,
    device_class TEXT,
    dev_test INTEGER NOT NULL DEFAULT 0,
    latitude REAL,
    longitude REAL,
    last_reading REAL,
    last_seen TIMESTAMP,
    service_uploaded TIMESTAMP,
    service_transport TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Measurements (deduplicated on device + capture time)
CREATE TABLE IF NOT EXISTS measurements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    device_urn TEXT NOT NULL REFERENCES devices(device_urn) ON DELETE CASCADE,
    when_captured TIMESTAMP NOT NULL,
    lnd_7318u REAL,
    UNIQUE (device_urn, when_captured)
);

CREATE INDEX IF NOT EXISTS idx_measurements_device_urn ON measurements(device_urn);
CREATE INDEX IF NOT EXISTS idx_measurements_when_captured ON measurements(when_captured);

-- Location history (deduplicated on device + capture time)
CREATE TABLE IF NOT EXISTS locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    device_urn TEXT NOT NULL REFERENCES devices(device_urn) ON DELETE CASCADE,
    when_captured TIMESTAMP NOT NULL,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    UNIQUE (device_urn, when_captured)
);

CREATE INDEX IF NOT EXISTS idx_locations_device_urn ON locations(device_urn);
CREATE INDEX IF NOT EXISTS idx_locations_when_captured ON locations(when_captured);

-- Per-device fetch bookkeeping. A row exists for every tracked URN, even
-- before the first successful poll.
CREATE TABLE IF NOT EXISTS device_fetch_status (
    device_urn TEXT PRIMARY KEY,
    fetch_status TEXT NOT NULL DEFAULT 'pending' CHECK (fetch_status IN ('pending', 'ok', 'error')),
    last_fetched TIMESTAMP,
    last_error TEXT,
    consecutive_failures INTEGER NOT NULL DEFAULT 0
);

-- Alert cooldown state, one row per device that has been evaluated
CREATE TABLE IF NOT EXISTS alert_state (
    device_urn TEXT PRIMARY KEY,
    over_threshold INTEGER NOT NULL DEFAULT 0,
    last_sent_at TIMESTAMP
);

-- Dispatched notifications
CREATE TABLE IF NOT EXISTS alert_log (
    id TEXT PRIMARY KEY,
    device_urn TEXT NOT NULL,
    reading REAL NOT NULL,
    threshold REAL NOT NULL,
    channels TEXT NOT NULL,
    message TEXT NOT NULL,
    sent_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alert_log_device_urn ON alert_log(device_urn);
CREATE INDEX IF NOT EXISTS idx_alert_log_sent_at ON alert_log(sent_at);
`
