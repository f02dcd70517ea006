// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/middleware"
	"github.com/louisbertrand/map-louis/models"
)

type StatusHandler struct {
	db  *sql.DB
	cfg config.Config
}

func NewStatusHandler(db *sql.DB, cfg config.Config) *StatusHandler {
	return &StatusHandler{db: db, cfg: cfg}
}

// FetchStatus handles GET /api/status
// Per-device fetch bookkeeping: status, last fetch, last error, failure streak.
func (h *StatusHandler) FetchStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := queryFetchStatus(h.db)
	if err != nil {
		slog.Error("failed to query fetch status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Devices: statuses})
}

// Alerts handles GET /api/alerts
// Recent alert log entries, newest first. ?limit=N caps the page (default 50).
func (h *StatusHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := h.db.Query(`
		SELECT id, device_urn, reading, threshold, channels, message, sent_at
		FROM alert_log
		ORDER BY sent_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		slog.Error("failed to query alert log", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	alerts := []models.AlertEntry{}
	for rows.Next() {
		var a models.AlertEntry
		if err := rows.Scan(&a.ID, &a.DeviceURN, &a.Reading, &a.Threshold,
			&a.Channels, &a.Message, &a.SentAt); err != nil {
			slog.Error("failed to scan alert row", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		slog.Error("alert row iteration failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AlertListResponse{Alerts: alerts})
}

// UIConfig handles GET /api/config
// Bootstrap values for the dashboard: map center/zoom, refresh cadence,
// retention window, and the external history link template.
func (h *StatusHandler) UIConfig(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.UIConfig{
		MapCenterLat:       h.cfg.Map.CenterLat,
		MapCenterLon:       h.cfg.Map.CenterLon,
		MapZoom:            h.cfg.Map.Zoom,
		RefreshSeconds:     h.cfg.Map.RefreshSeconds,
		MaxDataDays:        h.cfg.Retention.MaxDataDays,
		ExternalHistoryURL: h.cfg.Map.ExternalHistoryURL,
	})
}

// ExternalHistoryLink expands the {device_urn} placeholder for a device.
func ExternalHistoryLink(template, deviceURN string) string {
	return strings.ReplaceAll(template, "{device_urn}", deviceURN)
}

func queryFetchStatus(db *sql.DB) ([]models.FetchStatus, error) {
	rows, err := db.Query(`
		SELECT device_urn, fetch_status, last_fetched, last_error, consecutive_failures
		FROM device_fetch_status
		ORDER BY device_urn
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []models.FetchStatus{}
	for rows.Next() {
		var s models.FetchStatus
		var lastFetched sql.NullTime
		var lastError sql.NullString
		if err := rows.Scan(&s.DeviceURN, &s.FetchStatus, &lastFetched,
			&lastError, &s.ConsecutiveFailures); err != nil {
			return nil, err
		}
		if lastFetched.Valid {
			t := lastFetched.Time
			s.LastFetched = &t
		}
		if lastError.Valid {
			s.LastError = &lastError.String
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}
