// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbertrand/map-louis/metrics"
	"github.com/louisbertrand/map-louis/testutil"
)

func TestRouterRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.TestConfig(), metrics.New())

	cases := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/api/devices", http.StatusOK},
		{"GET", "/api/status", http.StatusOK},
		{"GET", "/api/alerts", http.StatusOK},
		{"GET", "/api/config", http.StatusOK},
		{"GET", "/api/measurements/geigiecast:63209", http.StatusNotFound},
		{"GET", "/api/admin/devices", http.StatusUnauthorized},
		{"POST", "/api/devices", http.StatusMethodNotAllowed},
		{"GET", "/", http.StatusOK},
		{"GET", "/no/such/route", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, w.Code)
		}
	}
}

func TestRouterServesDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.TestConfig(), metrics.New())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Radiation Sensor Network") {
		t.Error("expected dashboard HTML")
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/static/js/main.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for static asset, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "initMap") {
		t.Error("expected dashboard JS")
	}
}

func TestRouterMetricsExposition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.TestConfig(), metrics.New())

	// Generate one API request so HTTP metrics have a sample
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/devices", nil))

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "radmap_http_requests_total") {
		t.Error("expected service metrics in exposition")
	}
}
