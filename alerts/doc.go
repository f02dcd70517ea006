// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package alerts evaluates readings against the configured threshold and
dispatches notifications with a per-device cooldown.

# Evaluation

The fetcher hands each device's newest reading to the evaluator after a
successful poll:

	e := alerts.NewEvaluator(db, cfg, notifiers, m)
	err := e.Evaluate(ctx, urn, reading, when)

A reading at or above the threshold triggers a notification unless one
was already sent for that device within the cooldown window. Dropping
back below the threshold clears the device's over-threshold state.

# Delivery

Notifications fan out to all configured channels (see the notify
package). A channel failure is logged but does not fail evaluation, and
the cooldown clock only advances when at least one channel delivered, so
a transient SMTP outage retries on the next cycle instead of silently
consuming the cooldown.

Every dispatched alert is appended to the alert_log table.
*/
package alerts
