// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package safecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrDeviceNotFound is returned when the upstream has no record of a URN.
	ErrDeviceNotFound = errors.New("device not found upstream")
)

// Client talks to a tt-server style telemetry API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Devices fetches current state for all devices the upstream knows about.
// Malformed entries are skipped, not fatal; skipped is how many were dropped.
func (c *Client) Devices(ctx context.Context) (records []Record, skipped int, err error) {
	return c.fetchRecords(ctx, c.baseURL+"/devices")
}

// History fetches recent samples for a single device. The upstream keys the
// endpoint by URN; unknown URNs return ErrDeviceNotFound.
func (c *Client) History(ctx context.Context, deviceURN string) (records []Record, skipped int, err error) {
	return c.fetchRecords(ctx, c.baseURL+"/id/"+url.PathEscape(deviceURN))
}

func (c *Client) fetchRecords(ctx context.Context, endpoint string) ([]Record, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, 0, ErrDeviceNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read upstream body: %w", err)
	}

	return decodeRecords(body)
}

// decodeRecords parses an upstream JSON array element by element so that
// one garbage entry does not discard the rest of the response.
func decodeRecords(body []byte) ([]Record, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		// Some endpoints wrap the array in an object.
		var wrapper struct {
			Devices []json.RawMessage `json:"devices"`
		}
		if werr := json.Unmarshal(body, &wrapper); werr != nil || wrapper.Devices == nil {
			return nil, 0, fmt.Errorf("unparsable upstream response: %w", err)
		}
		raw = wrapper.Devices
	}

	records := make([]Record, 0, len(raw))
	skipped := 0
	for _, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			skipped++
			slog.Warn("skipping malformed upstream record", "error", err)
			continue
		}
		if rec.DeviceURN == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
