// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fetcher runs the background poll loop and the retention janitor.

# Poll Loop

Poller fetches every tracked device once per cycle:

	p := fetcher.New(db, client, cfg.Upstream, evaluator, m)
	if err := p.SeedTracked(); err != nil { ... }
	go p.Run(ctx)

Each cycle lists current device state upstream, then fetches per-device
history, and reconciles both into the database in one transaction per
device. Measurements and locations are deduplicated on (device_urn,
when_captured), so re-fetching overlapping history is a no-op.

A device failure marks that device's fetch status and moves on; it never
blocks the rest of the cycle. Transient request errors retry with
exponential backoff inside the cycle; a 404 is treated as permanent.

After a successful reconcile the device's newest reading is handed to the
alert evaluator.

# Retention

Janitor deletes measurements and locations older than the configured
window on a fixed interval:

	j := fetcher.NewJanitor(db, cfg.Retention, m)
	go j.Run(ctx)

Devices, fetch status, and the alert log are never touched by retention.
*/
package fetcher
