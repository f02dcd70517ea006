// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/middleware"
	"github.com/louisbertrand/map-louis/models"
)

type DeviceHandler struct {
	db  *sql.DB
	cfg config.Config
}

func NewDeviceHandler(db *sql.DB, cfg config.Config) *DeviceHandler {
	return &DeviceHandler{db: db, cfg: cfg}
}

// List handles GET /api/devices
// Returns every known device with its latest coordinates, newest reading
// and fetch status. Devices without a location yet report null coordinates;
// the map skips them.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT d.device_urn, d.device_id, d.device_class,
		       COALESCE(d.latitude, ll.latitude) AS latitude,
		       COALESCE(d.longitude, ll.longitude) AS longitude,
		       d.last_reading, d.last_seen,
		       COALESCE(s.fetch_status, 'pending') AS fetch_status,
		       s.last_error
		FROM devices d
		LEFT JOIN (
			SELECT l1.device_urn, l1.latitude, l1.longitude
			FROM locations l1
			WHERE l1.id = (SELECT MAX(l2.id) FROM locations l2 WHERE l2.device_urn = l1.device_urn)
		) ll ON ll.device_urn = d.device_urn
		LEFT JOIN device_fetch_status s ON s.device_urn = d.device_urn
		ORDER BY d.device_urn
	`)
	if err != nil {
		slog.Error("failed to query devices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		var d models.Device
		var deviceID sql.NullInt64
		var deviceClass, lastError sql.NullString
		var lat, lon, lastReading sql.NullFloat64
		var lastSeen sql.NullTime

		if err := rows.Scan(&d.DeviceURN, &deviceID, &deviceClass, &lat, &lon,
			&lastReading, &lastSeen, &d.FetchStatus, &lastError); err != nil {
			slog.Error("failed to scan device row", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		if deviceID.Valid {
			d.DeviceID = &deviceID.Int64
		}
		if deviceClass.Valid {
			d.DeviceClass = &deviceClass.String
		}
		if lat.Valid {
			d.Latitude = &lat.Float64
		}
		if lon.Valid {
			d.Longitude = &lon.Float64
		}
		if lastReading.Valid {
			d.LastReading = &lastReading.Float64
		}
		if lastSeen.Valid {
			t := lastSeen.Time
			d.LastSeen = &t
			d.LastSeenAgo = humanize.Time(t)
		}
		if lastError.Valid {
			d.LastError = &lastError.String
		}
		d.ExternalHistoryURL = ExternalHistoryLink(h.cfg.Map.ExternalHistoryURL, d.DeviceURN)

		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		slog.Error("device row iteration failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DeviceListResponse{Devices: devices})
}
