// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/middleware"
	"github.com/louisbertrand/map-louis/models"
)

const defaultHistoryDays = 7

type MeasurementHandler struct {
	db  *sql.DB
	cfg config.Config
}

func NewMeasurementHandler(db *sql.DB, cfg config.Config) *MeasurementHandler {
	return &MeasurementHandler{db: db, cfg: cfg}
}

// History handles GET /api/measurements/{device_urn}
// Returns time-ordered readings for the last ?days=N days (default 7,
// clamped to the retention window).
func (h *MeasurementHandler) History(w http.ResponseWriter, r *http.Request) {
	deviceURN := r.PathValue("device_urn")

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}
	if days < 1 {
		days = 1
	}
	if days > h.cfg.Retention.MaxDataDays {
		days = h.cfg.Retention.MaxDataDays
	}

	var deviceID sql.NullInt64
	var deviceClass sql.NullString
	err := h.db.QueryRow(`
		SELECT device_id, device_class FROM devices WHERE device_urn = ?
	`, deviceURN).Scan(&deviceID, &deviceClass)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Device not found")
		return
	}
	if err != nil {
		slog.Error("failed to query device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := h.db.Query(`
		SELECT when_captured, lnd_7318u
		FROM measurements
		WHERE device_urn = ? AND when_captured >= ?
		ORDER BY when_captured
	`, deviceURN, cutoff)
	if err != nil {
		slog.Error("failed to query measurements", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	measurements := []models.Measurement{}
	for rows.Next() {
		var m models.Measurement
		var value sql.NullFloat64
		if err := rows.Scan(&m.WhenCaptured, &value); err != nil {
			slog.Error("failed to scan measurement row", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if value.Valid {
			m.LND7318U = &value.Float64
		}
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		slog.Error("measurement row iteration failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.MeasurementsResponse{
		DeviceURN:    deviceURN,
		Days:         days,
		Measurements: measurements,
	}
	if deviceID.Valid {
		resp.DeviceID = &deviceID.Int64
	}
	if deviceClass.Valid {
		resp.DeviceClass = &deviceClass.String
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
