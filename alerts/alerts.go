// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/metrics"
	"github.com/louisbertrand/map-louis/notify"
)

// Evaluator applies the threshold/cooldown rule after each successful
// device reconcile and dispatches notifications.
//
// State machine per device: a reading at or above the threshold raises
// over_threshold and (cooldown permitting) sends; a reading back under the
// threshold clears over_threshold so the next excursion alerts again.
type Evaluator struct {
	db        *sql.DB
	cfg       config.AlertsConfig
	notifiers []notify.Notifier
	metrics   *metrics.Metrics

	// now is swappable for cooldown tests.
	now func() time.Time
}

func NewEvaluator(db *sql.DB, cfg config.AlertsConfig, notifiers []notify.Notifier, m *metrics.Metrics) *Evaluator {
	return &Evaluator{
		db:        db,
		cfg:       cfg,
		notifiers: notifiers,
		metrics:   m,
		now:       time.Now,
	}
}

// Evaluate processes the newest reading for a device. Notification failures
// are logged and counted, never returned: a flaky SMTP server must not fail
// the poll cycle.
func (e *Evaluator) Evaluate(ctx context.Context, deviceURN string, reading float64, when time.Time) error {
	if !e.cfg.Enabled {
		return nil
	}

	overThreshold, lastSentAt, err := e.loadState(deviceURN)
	if err != nil {
		return fmt.Errorf("failed to load alert state: %w", err)
	}

	if reading < e.cfg.ThresholdCPM {
		if overThreshold {
			if err := e.saveState(deviceURN, false, lastSentAt); err != nil {
				return err
			}
			slog.Info("device back under alert threshold",
				"device_urn", deviceURN, "reading", reading)
		}
		return nil
	}

	now := e.now()
	if lastSentAt != nil && now.Sub(*lastSentAt) < e.cfg.Cooldown {
		e.metrics.AlertsSuppressed.Inc()
		slog.Debug("alert suppressed by cooldown",
			"device_urn", deviceURN, "reading", reading,
			"last_sent_at", lastSentAt)
		return e.saveState(deviceURN, true, lastSentAt)
	}

	alert := notify.Alert{
		DeviceURN: deviceURN,
		Reading:   reading,
		Threshold: e.cfg.ThresholdCPM,
		When:      when,
	}

	var sent []string
	for _, n := range e.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			slog.Error("alert dispatch failed",
				"channel", n.Name(), "device_urn", deviceURN, "error", err)
			continue
		}
		e.metrics.AlertsSent.WithLabelValues(n.Name()).Inc()
		sent = append(sent, n.Name())
	}

	channels := strings.Join(sent, ",")
	if channels == "" {
		channels = "log"
	}

	// With channels configured but all failing, leave last_sent_at alone so
	// the next cycle retries instead of waiting out the cooldown.
	sentAt := lastSentAt
	if len(sent) > 0 || len(e.notifiers) == 0 {
		sentAt = &now

		_, err = e.db.Exec(`
			INSERT INTO alert_log (id, device_urn, reading, threshold, channels, message, sent_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), deviceURN, reading, e.cfg.ThresholdCPM, channels, alert.Subject(), now)
		if err != nil {
			return fmt.Errorf("failed to record alert: %w", err)
		}

		slog.Warn("radiation alert dispatched",
			"device_urn", deviceURN, "reading", reading,
			"threshold", e.cfg.ThresholdCPM, "channels", channels)
	}

	return e.saveState(deviceURN, true, sentAt)
}

func (e *Evaluator) loadState(deviceURN string) (overThreshold bool, lastSentAt *time.Time, err error) {
	var over int
	var sentAt sql.NullTime
	err = e.db.QueryRow(`
		SELECT over_threshold, last_sent_at FROM alert_state WHERE device_urn = ?
	`, deviceURN).Scan(&over, &sentAt)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	if sentAt.Valid {
		t := sentAt.Time
		lastSentAt = &t
	}
	return over != 0, lastSentAt, nil
}

func (e *Evaluator) saveState(deviceURN string, overThreshold bool, lastSentAt *time.Time) error {
	over := 0
	if overThreshold {
		over = 1
	}
	_, err := e.db.Exec(`
		INSERT INTO alert_state (device_urn, over_threshold, last_sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (device_urn) DO UPDATE SET
			over_threshold = excluded.over_threshold,
			last_sent_at = excluded.last_sent_at
	`, deviceURN, over, lastSentAt)
	if err != nil {
		return fmt.Errorf("failed to save alert state: %w", err)
	}
	return nil
}
