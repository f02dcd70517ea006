// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - AddDeviceRequest: device_urn

# Response Types

  - DeviceListResponse: devices
  - MeasurementsResponse: device_urn, days, measurements
  - StatusResponse: devices (fetch status rows)
  - AlertListResponse: alerts
  - AddDeviceResponse: device_urn, is_new
  - UIConfig: map settings for the frontend
  - ErrorResponse: error, message

# Domain Types

  - Device: current state with latest location and fetch status
  - Measurement: one reading at a capture time
  - Location: one position at a capture time
  - FetchStatus: per-device poll bookkeeping
  - AlertEntry: one dispatched notification

# Constants

Fetch status values:

	FetchPending = "pending"
	FetchOK      = "ok"
	FetchError   = "error"

Notification channels:

	ChannelEmail = "email"
	ChannelSMS   = "sms"
*/
package models
