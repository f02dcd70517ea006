// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/louisbertrand/map-louis/models"
	"github.com/louisbertrand/map-louis/testutil"
)

func TestFetchStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewStatusHandler(db, testutil.TestConfig())

	testutil.SeedFetchStatus(t, db, "geigiecast:63209", models.FetchOK)
	if _, err := db.Exec(`
		UPDATE device_fetch_status
		SET last_error = 'upstream returned status 502', consecutive_failures = 3, fetch_status = 'error'
		WHERE device_urn = 'geigiecast:63209'
	`); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	h.FetchStatus(w, testutil.MakeRequest("GET", "/api/status", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.StatusResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Devices) != 1 {
		t.Fatalf("expected 1 status row, got %d", len(resp.Devices))
	}
	s := resp.Devices[0]
	if s.FetchStatus != models.FetchError {
		t.Errorf("expected error status, got %s", s.FetchStatus)
	}
	if s.LastError == nil || *s.LastError != "upstream returned status 502" {
		t.Errorf("unexpected last error: %v", s.LastError)
	}
	if s.ConsecutiveFailures != 3 {
		t.Errorf("expected 3 consecutive failures, got %d", s.ConsecutiveFailures)
	}
}

func seedAlert(t *testing.T, h *StatusHandler, urn string, sentAt time.Time) {
	t.Helper()
	_, err := h.db.Exec(`
		INSERT INTO alert_log (id, device_urn, reading, threshold, channels, message, sent_at)
		VALUES (?, ?, 150, 100, 'email', 'Radiation alert', ?)
	`, uuid.NewString(), urn, sentAt.UTC())
	if err != nil {
		t.Fatalf("failed to seed alert: %v", err)
	}
}

func TestAlertsNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewStatusHandler(db, testutil.TestConfig())

	now := time.Now().UTC()
	seedAlert(t, h, "geigiecast:63209", now.Add(-2*time.Hour))
	seedAlert(t, h, "geigiecast-zen:65049", now.Add(-time.Hour))

	w := httptest.NewRecorder()
	h.Alerts(w, testutil.MakeRequest("GET", "/api/alerts", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AlertListResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(resp.Alerts))
	}
	if resp.Alerts[0].DeviceURN != "geigiecast-zen:65049" {
		t.Errorf("expected newest alert first, got %s", resp.Alerts[0].DeviceURN)
	}
}

func TestAlertsLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewStatusHandler(db, testutil.TestConfig())

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seedAlert(t, h, "geigiecast:63209", now.Add(-time.Duration(i)*time.Minute))
	}

	w := httptest.NewRecorder()
	h.Alerts(w, testutil.MakeRequest("GET", "/api/alerts?limit=2", nil, nil))

	var resp models.AlertListResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Alerts) != 2 {
		t.Errorf("expected 2 alerts with limit=2, got %d", len(resp.Alerts))
	}

	w = httptest.NewRecorder()
	h.Alerts(w, testutil.MakeRequest("GET", "/api/alerts?limit=zero", nil, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestUIConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	h := NewStatusHandler(db, cfg)

	w := httptest.NewRecorder()
	h.UIConfig(w, testutil.MakeRequest("GET", "/api/config", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.UIConfig
	testutil.AssertJSON(t, w, &resp)
	if resp.MapCenterLat != cfg.Map.CenterLat || resp.MapZoom != cfg.Map.Zoom {
		t.Errorf("unexpected map settings: %+v", resp)
	}
	if resp.MaxDataDays != cfg.Retention.MaxDataDays {
		t.Errorf("expected retention window %d, got %d", cfg.Retention.MaxDataDays, resp.MaxDataDays)
	}
}

func TestExternalHistoryLink(t *testing.T) {
	got := ExternalHistoryLink("https://example.org/d?device={device_urn}", "geigiecast:63209")
	want := "https://example.org/d?device=geigiecast:63209"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
