// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics holds the Prometheus instrumentation for the service.

New creates a Metrics value on its own registry with the standard Go
and process collectors. All series use the radmap_ prefix: fetch cycle
and error counters, insert counters, alert counters, a last-reading
gauge per device, and HTTP request count/duration.

Handler returns the /metrics exposition handler.
*/
package metrics
