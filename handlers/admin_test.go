// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/louisbertrand/map-louis/auth"
	"github.com/louisbertrand/map-louis/models"
	"github.com/louisbertrand/map-louis/testutil"
)

func adminHeaders() map[string]string {
	return map[string]string{auth.AdminKeyHeader: "test-admin-key"}
}

func TestAddDeviceRequiresAdminKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.TestConfig())

	body := models.AddDeviceRequest{DeviceURN: "geigiecast:63209"}

	w := httptest.NewRecorder()
	h.AddDevice(w, testutil.MakeRequest("POST", "/api/admin/devices", body, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = httptest.NewRecorder()
	h.AddDevice(w, testutil.MakeRequest("POST", "/api/admin/devices", body,
		map[string]string{auth.AdminKeyHeader: "wrong-key"}))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestAddDevice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.TestConfig())

	body := models.AddDeviceRequest{DeviceURN: " geigiecast:63209 "}

	w := httptest.NewRecorder()
	h.AddDevice(w, testutil.MakeRequest("POST", "/api/admin/devices", body, adminHeaders()))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AddDeviceResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.DeviceURN != "geigiecast:63209" {
		t.Errorf("URN should be trimmed, got %q", resp.DeviceURN)
	}
	if !resp.IsNew {
		t.Error("first add should report is_new")
	}

	// Adding again is a no-op
	w = httptest.NewRecorder()
	h.AddDevice(w, testutil.MakeRequest("POST", "/api/admin/devices", body, adminHeaders()))
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if resp.IsNew {
		t.Error("second add should not report is_new")
	}

	var status string
	if err := db.QueryRow(`
		SELECT fetch_status FROM device_fetch_status WHERE device_urn = 'geigiecast:63209'
	`).Scan(&status); err != nil {
		t.Fatalf("tracked device missing: %v", err)
	}
	if status != models.FetchPending {
		t.Errorf("new device should start pending, got %s", status)
	}
}

func TestAddDeviceEmptyURN(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.TestConfig())

	w := httptest.NewRecorder()
	h.AddDevice(w, testutil.MakeRequest("POST", "/api/admin/devices",
		models.AddDeviceRequest{DeviceURN: "  "}, adminHeaders()))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestRemoveDevice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.TestConfig())

	urn := "geigiecast:63209"
	testutil.SeedDevice(t, db, urn, 43.9, -79.0, 21.5, time.Now())
	testutil.SeedFetchStatus(t, db, urn, models.FetchOK)
	testutil.SeedMeasurement(t, db, urn, time.Now().Add(-time.Hour), 20)
	testutil.SeedLocation(t, db, urn, time.Now().Add(-time.Hour), 43.9, -79.0)

	req := testutil.MakeRequest("DELETE", "/api/admin/devices/"+urn, nil, adminHeaders())
	req.SetPathValue("device_urn", urn)

	w := httptest.NewRecorder()
	h.RemoveDevice(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	for _, table := range []string{"device_fetch_status", "devices", "measurements", "locations"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected %s to be empty after removal, found %d rows", table, count)
		}
	}
}

func TestRemoveDeviceNotTracked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.TestConfig())

	req := testutil.MakeRequest("DELETE", "/api/admin/devices/geigiecast:99999", nil, adminHeaders())
	req.SetPathValue("device_urn", "geigiecast:99999")

	w := httptest.NewRecorder()
	h.RemoveDevice(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminListDevices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.TestConfig())

	testutil.SeedFetchStatus(t, db, "geigiecast:63209", models.FetchError)
	testutil.SeedFetchStatus(t, db, "geigiecast-zen:65049", models.FetchPending)

	w := httptest.NewRecorder()
	h.ListDevices(w, testutil.MakeRequest("GET", "/api/admin/devices", nil, adminHeaders()))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.StatusResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Devices) != 2 {
		t.Fatalf("expected 2 tracked devices, got %d", len(resp.Devices))
	}
}
