// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Fetch status constants for device_fetch_status.fetch_status
const (
	FetchPending = "pending"
	FetchOK      = "ok"
	FetchError   = "error"
)

// Notification channel constants
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Request types

type AddDeviceRequest struct {
	DeviceURN string `json:"device_urn"`
}

// Response types

type AddDeviceResponse struct {
	DeviceURN string `json:"device_urn"`
	IsNew     bool   `json:"is_new"`
}

type DeviceListResponse struct {
	Devices []Device `json:"devices"`
}

type MeasurementsResponse struct {
	DeviceURN    string        `json:"device_urn"`
	DeviceID     *int64        `json:"device_id"`
	DeviceClass  *string       `json:"device_class"`
	Days         int           `json:"days"`
	Measurements []Measurement `json:"measurements"`
}

type StatusResponse struct {
	Devices []FetchStatus `json:"devices"`
}

type AlertListResponse struct {
	Alerts []AlertEntry `json:"alerts"`
}

// UIConfig is the dashboard bootstrap payload served by GET /api/config.
type UIConfig struct {
	MapCenterLat       float64 `json:"map_center_lat"`
	MapCenterLon       float64 `json:"map_center_lon"`
	MapZoom            int     `json:"map_zoom"`
	RefreshSeconds     int     `json:"refresh_seconds"`
	MaxDataDays        int     `json:"max_data_days"`
	ExternalHistoryURL string  `json:"external_history_url"`
}

// Domain types

type Device struct {
	DeviceURN   string     `json:"device_urn"`
	DeviceID    *int64     `json:"device_id"`
	DeviceClass *string    `json:"device_class"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	LastReading *float64   `json:"last_reading"`
	LastSeen    *time.Time `json:"last_seen"`
	LastSeenAgo string     `json:"last_seen_ago,omitempty"`
	FetchStatus string     `json:"fetch_status"`
	LastError   *string    `json:"last_error,omitempty"`

	// ExternalHistoryURL links to the upstream dashboard for this device.
	ExternalHistoryURL string `json:"external_history_url,omitempty"`
}

type Measurement struct {
	WhenCaptured time.Time `json:"when_captured"`
	LND7318U     *float64  `json:"lnd_7318u"`
}

type Location struct {
	DeviceURN    string    `json:"device_urn"`
	WhenCaptured time.Time `json:"when_captured"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

type FetchStatus struct {
	DeviceURN           string     `json:"device_urn"`
	FetchStatus         string     `json:"fetch_status"`
	LastFetched         *time.Time `json:"last_fetched"`
	LastError           *string    `json:"last_error"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}

type AlertEntry struct {
	ID        string    `json:"id"`
	DeviceURN string    `json:"device_urn"`
	Reading   float64   `json:"reading"`
	Threshold float64   `json:"threshold"`
	Channels  string    `json:"channels"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
