// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package web embeds and serves the map dashboard.

The dashboard is a single page with a Leaflet map of device markers and
a Chart.js history chart, loading its settings from /api/config. Index
serves the page; Static serves the embedded assets under /static/.
*/
package web
