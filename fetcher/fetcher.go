// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/metrics"
	"github.com/louisbertrand/map-louis/safecast"
)

// UpstreamClient is the slice of the safecast client the poller needs.
type UpstreamClient interface {
	Devices(ctx context.Context) (records []safecast.Record, skipped int, err error)
	History(ctx context.Context, deviceURN string) (records []safecast.Record, skipped int, err error)
}

// AlertSink receives the newest reading after each successful reconcile.
type AlertSink interface {
	Evaluate(ctx context.Context, deviceURN string, reading float64, when time.Time) error
}

// Poller drives the poll -> parse -> upsert pipeline. One background
// goroutine walks every tracked device each cycle; a failure for one device
// is recorded in device_fetch_status and never blocks the others.
type Poller struct {
	db      *sql.DB
	client  UpstreamClient
	cfg     config.UpstreamConfig
	alerts  AlertSink
	metrics *metrics.Metrics
}

func New(db *sql.DB, client UpstreamClient, cfg config.UpstreamConfig, alerts AlertSink, m *metrics.Metrics) *Poller {
	return &Poller{
		db:      db,
		client:  client,
		cfg:     cfg,
		alerts:  alerts,
		metrics: m,
	}
}

// SeedTracked registers the configured device URNs so they show up as
// pending before the first cycle. Devices added later via the admin API get
// their row the same way.
func (p *Poller) SeedTracked() error {
	for _, urn := range p.cfg.DeviceURNs {
		_, err := p.db.Exec(`
			INSERT OR IGNORE INTO device_fetch_status (device_urn, fetch_status)
			VALUES (?, 'pending')
		`, urn)
		if err != nil {
			return fmt.Errorf("failed to seed tracked device %s: %w", urn, err)
		}
	}
	return nil
}

// Run polls until ctx is cancelled. The first cycle starts immediately.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("poller started",
		"interval", p.cfg.PollInterval, "base_url", p.cfg.BaseURL)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		p.RunCycle(ctx)

		select {
		case <-ctx.Done():
			slog.Info("poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunCycle fetches and reconciles every tracked device once.
func (p *Poller) RunCycle(ctx context.Context) {
	urns, err := p.trackedURNs()
	if err != nil {
		slog.Error("failed to list tracked devices", "error", err)
		return
	}
	if len(urns) == 0 {
		slog.Debug("no tracked devices, skipping cycle")
		return
	}

	// One listing per cycle covers current state for all devices. If it
	// fails we still attempt per-device history below.
	state := map[string]safecast.Record{}
	devices, skipped, err := p.fetchWithRetry(ctx, func(ctx context.Context) ([]safecast.Record, int, error) {
		return p.client.Devices(ctx)
	})
	if err != nil {
		slog.Warn("device listing failed, proceeding with history only", "error", err)
	} else {
		if skipped > 0 {
			slog.Warn("device listing contained malformed records", "skipped", skipped)
		}
		for _, rec := range devices {
			state[rec.DeviceURN] = rec
		}
	}

	for _, urn := range urns {
		if ctx.Err() != nil {
			return
		}
		current, hasCurrent := state[urn]
		if err := p.fetchDevice(ctx, urn, current, hasCurrent); err != nil {
			p.metrics.FetchErrors.WithLabelValues(urn).Inc()
			slog.Error("device fetch failed", "device_urn", urn, "error", err)
			if serr := p.markError(urn, err); serr != nil {
				slog.Error("failed to record fetch error", "device_urn", urn, "error", serr)
			}
		}
	}

	p.metrics.FetchCycles.Inc()
}

func (p *Poller) fetchDevice(ctx context.Context, urn string, current safecast.Record, hasCurrent bool) error {
	history, skipped, err := p.fetchWithRetry(ctx, func(ctx context.Context) ([]safecast.Record, int, error) {
		return p.client.History(ctx, urn)
	})
	if err != nil {
		return err
	}
	if skipped > 0 {
		p.metrics.RecordsSkipped.WithLabelValues(urn).Add(float64(skipped))
		slog.Warn("skipped malformed history records", "device_urn", urn, "skipped", skipped)
	}

	inserted, newest, err := p.reconcile(urn, current, hasCurrent, history)
	if err != nil {
		return err
	}

	if err := p.markOK(urn); err != nil {
		return err
	}

	slog.Debug("device reconciled",
		"device_urn", urn, "history_records", len(history), "inserted", inserted)

	if newest != nil && newest.LND7318U.Valid {
		p.metrics.LastReading.WithLabelValues(urn).Set(newest.LND7318U.Value)
		if p.alerts != nil {
			when := time.Now()
			if newest.WhenCaptured.Valid {
				when = newest.WhenCaptured.Value
			}
			if err := p.alerts.Evaluate(ctx, urn, newest.LND7318U.Value, when); err != nil {
				slog.Error("alert evaluation failed", "device_urn", urn, "error", err)
			}
		}
	}

	return nil
}

// reconcile applies one device's fetched state and history in a single
// transaction: either the device upsert and all new samples land, or none do.
func (p *Poller) reconcile(urn string, current safecast.Record, hasCurrent bool, history []safecast.Record) (inserted int, newest *safecast.Record, err error) {
	newest = newestRecord(history)
	if newest == nil && hasCurrent {
		newest = &current
	}

	tx, err := p.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin reconcile tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertDevice(tx, urn, current, hasCurrent, newest); err != nil {
		return 0, nil, err
	}

	measurements := 0
	locations := 0
	for _, rec := range history {
		if !rec.WhenCaptured.Valid {
			continue
		}

		if rec.LND7318U.Valid {
			res, err := tx.Exec(`
				INSERT OR IGNORE INTO measurements (device_urn, when_captured, lnd_7318u)
				VALUES (?, ?, ?)
			`, urn, rec.WhenCaptured.Value, rec.LND7318U.Value)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to insert measurement: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				measurements++
			}
		}

		if rec.HasLocation() {
			res, err := tx.Exec(`
				INSERT OR IGNORE INTO locations (device_urn, when_captured, latitude, longitude)
				VALUES (?, ?, ?, ?)
			`, urn, rec.WhenCaptured.Value, rec.LocLat.Value, rec.LocLon.Value)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to insert location: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				locations++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit reconcile tx: %w", err)
	}

	p.metrics.MeasurementsInserted.WithLabelValues(urn).Add(float64(measurements))
	p.metrics.LocationsInserted.WithLabelValues(urn).Add(float64(locations))

	return measurements + locations, newest, nil
}

// upsertDevice refreshes the devices row, preserving previously known
// fields when the upstream omits them this cycle.
func upsertDevice(tx *sql.Tx, urn string, current safecast.Record, hasCurrent bool, newest *safecast.Record) error {
	rec := current
	if !hasCurrent && newest != nil {
		rec = *newest
	}

	var lastReading *float64
	var lastSeen *time.Time
	if newest != nil {
		lastReading = newest.LND7318U.Ptr()
		lastSeen = newest.WhenCaptured.Ptr()
	}

	devTest := 0
	if rec.DevTest.Valid && rec.DevTest.Value {
		devTest = 1
	}

	_, err := tx.Exec(`
		INSERT INTO devices (device_urn, device_id, device_class, dev_test, latitude, longitude,
		                     last_reading, last_seen, service_uploaded, service_transport)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (device_urn) DO UPDATE SET
			device_id = COALESCE(excluded.device_id, devices.device_id),
			device_class = COALESCE(excluded.device_class, devices.device_class),
			dev_test = excluded.dev_test,
			latitude = COALESCE(excluded.latitude, devices.latitude),
			longitude = COALESCE(excluded.longitude, devices.longitude),
			last_reading = COALESCE(excluded.last_reading, devices.last_reading),
			last_seen = COALESCE(excluded.last_seen, devices.last_seen),
			service_uploaded = COALESCE(excluded.service_uploaded, devices.service_uploaded),
			service_transport = COALESCE(excluded.service_transport, devices.service_transport)
	`, urn, rec.DeviceID.Ptr(), nullString(rec.DeviceClass), devTest,
		rec.LocLat.Ptr(), rec.LocLon.Ptr(), lastReading, lastSeen,
		rec.ServiceUploaded.Ptr(), nullString(rec.ServiceTransport))
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// newestRecord picks the record with the latest capture time that carries
// a radiation reading.
func newestRecord(history []safecast.Record) *safecast.Record {
	var newest *safecast.Record
	for i := range history {
		rec := &history[i]
		if !rec.WhenCaptured.Valid || !rec.LND7318U.Valid {
			continue
		}
		if newest == nil || rec.WhenCaptured.Value.After(newest.WhenCaptured.Value) {
			newest = rec
		}
	}
	return newest
}

type fetchFunc func(ctx context.Context) ([]safecast.Record, int, error)

// fetchWithRetry wraps an upstream call in bounded exponential backoff.
// A 404 is permanent: retrying an unknown URN is pointless.
func (p *Poller) fetchWithRetry(ctx context.Context, fetch fetchFunc) ([]safecast.Record, int, error) {
	var records []safecast.Record
	var skipped int

	op := func() error {
		var err error
		records, skipped, err = fetch(ctx)
		if errors.Is(err, safecast.ErrDeviceNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, 0, err
	}
	return records, skipped, nil
}

func (p *Poller) trackedURNs() ([]string, error) {
	rows, err := p.db.Query(`SELECT device_urn FROM device_fetch_status ORDER BY device_urn`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urns []string
	for rows.Next() {
		var urn string
		if err := rows.Scan(&urn); err != nil {
			return nil, err
		}
		urns = append(urns, urn)
	}
	return urns, rows.Err()
}

// markOK records a successful fetch. Written outside the reconcile
// transaction so an insert failure still leaves an error status behind.
func (p *Poller) markOK(urn string) error {
	_, err := p.db.Exec(`
		INSERT INTO device_fetch_status (device_urn, fetch_status, last_fetched, last_error, consecutive_failures)
		VALUES (?, 'ok', ?, NULL, 0)
		ON CONFLICT (device_urn) DO UPDATE SET
			fetch_status = 'ok',
			last_fetched = excluded.last_fetched,
			last_error = NULL,
			consecutive_failures = 0
	`, urn, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark fetch ok: %w", err)
	}
	return nil
}

func (p *Poller) markError(urn string, ferr error) error {
	_, err := p.db.Exec(`
		INSERT INTO device_fetch_status (device_urn, fetch_status, last_error, consecutive_failures)
		VALUES (?, 'error', ?, 1)
		ON CONFLICT (device_urn) DO UPDATE SET
			fetch_status = 'error',
			last_error = excluded.last_error,
			consecutive_failures = device_fetch_status.consecutive_failures + 1
	`, urn, ferr.Error())
	if err != nil {
		return fmt.Errorf("failed to mark fetch error: %w", err)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
