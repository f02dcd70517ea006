// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"time"
)

// Alert is the payload handed to notification channels.
type Alert struct {
	DeviceURN string
	Reading   float64
	Threshold float64
	When      time.Time
}

// Subject is the short single-line form used for SMS and email subjects.
func (a Alert) Subject() string {
	return fmt.Sprintf("Radiation alert: %s at %.1f CPM (threshold %.1f)",
		a.DeviceURN, a.Reading, a.Threshold)
}

// Notifier is implemented by each notification channel.
type Notifier interface {
	// Name identifies the channel ("email", "sms") in logs and alert_log.
	Name() string
	Send(ctx context.Context, a Alert) error
}
