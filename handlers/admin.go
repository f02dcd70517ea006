// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/louisbertrand/map-louis/auth"
	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/middleware"
	"github.com/louisbertrand/map-louis/models"
)

type AdminHandler struct {
	db  *sql.DB
	cfg config.Config
}

func NewAdminHandler(db *sql.DB, cfg config.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := auth.RequireAdmin(r, h.cfg.Server.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// AddDevice handles POST /api/admin/devices
// Starts tracking a device URN; the poll loop picks it up on its next cycle.
func (h *AdminHandler) AddDevice(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.AddDeviceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	urn := strings.TrimSpace(req.DeviceURN)
	if urn == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "device_urn required")
		return
	}

	res, err := h.db.Exec(`
		INSERT OR IGNORE INTO device_fetch_status (device_urn, fetch_status)
		VALUES (?, 'pending')
	`, urn)
	if err != nil {
		slog.Error("failed to track device", "device_urn", urn, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	n, _ := res.RowsAffected()
	isNew := n > 0
	if isNew {
		slog.Info("device tracked", "device_urn", urn)
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.AddDeviceResponse{
		DeviceURN: urn,
		IsNew:     isNew,
	})
}

// RemoveDevice handles DELETE /api/admin/devices/{device_urn}
// Stops tracking a device and drops its rows (measurements and locations
// cascade from the devices row). The alert log is kept for audit.
func (h *AdminHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	urn := r.PathValue("device_urn")

	res, err := h.db.Exec(`DELETE FROM device_fetch_status WHERE device_urn = ?`, urn)
	if err != nil {
		slog.Error("failed to untrack device", "device_urn", urn, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Device not tracked")
		return
	}

	for _, stmt := range []string{
		`DELETE FROM devices WHERE device_urn = ?`,
		`DELETE FROM alert_state WHERE device_urn = ?`,
	} {
		if _, err := h.db.Exec(stmt, urn); err != nil {
			slog.Error("failed to remove device rows", "device_urn", urn, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	slog.Info("device untracked", "device_urn", urn)
	w.WriteHeader(http.StatusNoContent)
}

// ListDevices handles GET /api/admin/devices
// Tracked URNs with their fetch bookkeeping, whether or not a poll has
// succeeded yet.
func (h *AdminHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	statuses, err := queryFetchStatus(h.db)
	if err != nil {
		slog.Error("failed to query fetch status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Devices: statuses})
}
