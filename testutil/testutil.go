// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/db"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection from the pool would get its own empty in-memory DB
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// TestConfig returns a standard test configuration.
func TestConfig() config.Config {
	var cfg config.Config
	cfg.Server.Port = 8000
	cfg.Server.AdminKey = "test-admin-key"
	cfg.Database.Path = ":memory:"
	cfg.Upstream.BaseURL = "http://upstream.invalid"
	cfg.Upstream.PollInterval = time.Minute
	cfg.Upstream.RequestTimeout = 5 * time.Second
	cfg.Upstream.MaxRetries = 0
	cfg.Retention.MaxDataDays = 30
	cfg.Retention.CleanupInterval = time.Hour
	cfg.Map.CenterLat = 43.9
	cfg.Map.CenterLon = -79.0
	cfg.Map.Zoom = 10
	cfg.Map.RefreshSeconds = 300
	cfg.Map.ExternalHistoryURL = "https://example.org/history?device={device_urn}"
	cfg.Alerts.Enabled = true
	cfg.Alerts.ThresholdCPM = 100
	cfg.Alerts.Cooldown = time.Hour
	return cfg
}

// SeedDevice inserts a device row with a location and reading.
func SeedDevice(t *testing.T, conn *sql.DB, urn string, lat, lon, lastReading float64, lastSeen time.Time) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO devices (device_urn, device_id, device_class, latitude, longitude, last_reading, last_seen)
		VALUES (?, 12345, 'geigiecast', ?, ?, ?, ?)
	`, urn, lat, lon, lastReading, lastSeen)
	if err != nil {
		t.Fatalf("Failed to seed device: %v", err)
	}
}

// SeedBareDevice inserts a device row with no location or readings yet.
func SeedBareDevice(t *testing.T, conn *sql.DB, urn string) {
	t.Helper()

	_, err := conn.Exec(`INSERT INTO devices (device_urn) VALUES (?)`, urn)
	if err != nil {
		t.Fatalf("Failed to seed bare device: %v", err)
	}
}

// SeedMeasurement inserts one measurement row.
func SeedMeasurement(t *testing.T, conn *sql.DB, urn string, when time.Time, cpm float64) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO measurements (device_urn, when_captured, lnd_7318u)
		VALUES (?, ?, ?)
	`, urn, when.UTC(), cpm)
	if err != nil {
		t.Fatalf("Failed to seed measurement: %v", err)
	}
}

// SeedLocation inserts one location row.
func SeedLocation(t *testing.T, conn *sql.DB, urn string, when time.Time, lat, lon float64) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO locations (device_urn, when_captured, latitude, longitude)
		VALUES (?, ?, ?, ?)
	`, urn, when.UTC(), lat, lon)
	if err != nil {
		t.Fatalf("Failed to seed location: %v", err)
	}
}

// SeedFetchStatus inserts a device_fetch_status row.
func SeedFetchStatus(t *testing.T, conn *sql.DB, urn, status string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO device_fetch_status (device_urn, fetch_status)
		VALUES (?, ?)
	`, urn, status)
	if err != nil {
		t.Fatalf("Failed to seed fetch status: %v", err)
	}
}

// MakeRequest creates an HTTP test request.
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct.
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
