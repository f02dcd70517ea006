// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package safecast is a client for the Safecast tt.safecast.org telemetry API.

# Client

NewClient creates a client bound to a base URL:

	client := safecast.NewClient("https://tt.safecast.org", 30*time.Second)

	devices, skipped, err := client.Devices(ctx)
	records, skipped, err := client.History(ctx, "geigiecast:63209")

History returns ErrDeviceNotFound for unknown URNs so callers can treat
404 as permanent instead of retrying.

# Tolerant Decoding

The upstream feed mixes field types freely: numbers arrive as strings,
timestamps in several layouts, booleans as 0/1. The Float, Int, Bool,
and Time types absorb all of that without failing the record:

  - A parseable value sets Valid = true.
  - null, absent, or garbage values set Valid = false.

Whole records are skipped only when the element is not a JSON object or
has no device_urn. The skip count is returned alongside the records so
callers can surface it in metrics.
*/
package safecast
