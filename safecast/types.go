// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package safecast

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// The upstream API is loose about types: numeric fields arrive as numbers
// or quoted strings, timestamps in a handful of layouts, and any field may
// be null or absent. Float, Int and Time absorb that instead of failing
// the whole record.

// Float is a float64 that tolerates quoted numbers and null.
// Unparsable values decode as not-Valid rather than erroring.
type Float struct {
	Value float64
	Valid bool
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(b), `"`)))
	if s == "" || s == "null" {
		f.Valid = false
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.Valid = false
		return nil
	}
	f.Value = v
	f.Valid = true
	return nil
}

// Ptr returns the value as a nullable pointer.
func (f Float) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Int is an int64 with the same tolerance rules as Float.
type Int struct {
	Value int64
	Valid bool
}

func (i *Int) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(b), `"`)))
	if s == "" || s == "null" {
		i.Valid = false
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some firmware reports integers as floats ("65049.0")
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			i.Valid = false
			return nil
		}
		v = int64(fv)
	}
	i.Value = v
	i.Valid = true
	return nil
}

func (i Int) Ptr() *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

// Bool tolerates true/false, "true"/"false", and 0/1.
type Bool struct {
	Value bool
	Valid bool
}

func (bl *Bool) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(b), `"`)))
	switch strings.ToLower(s) {
	case "true", "1":
		bl.Value, bl.Valid = true, true
	case "false", "0":
		bl.Value, bl.Valid = false, true
	default:
		bl.Valid = false
	}
	return nil
}

// timeLayouts are tried in order when decoding upstream timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time is a timestamp that tolerates the layouts the upstream emits.
type Time struct {
	Value time.Time
	Valid bool
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(b), `"`)))
	if s == "" || s == "null" {
		t.Valid = false
		return nil
	}
	for _, layout := range timeLayouts {
		v, err := time.Parse(layout, s)
		if err == nil {
			t.Value = v.UTC()
			t.Valid = true
			return nil
		}
	}
	t.Valid = false
	return nil
}

func (t Time) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Value
	return &v
}

// Record is a single upstream device/measurement object. The same shape is
// returned by the device listing and by the per-device history endpoint.
type Record struct {
	DeviceURN        string `json:"device_urn"`
	DeviceID         Int    `json:"device"`
	DeviceClass      string `json:"device_class"`
	DevTest          Bool   `json:"dev_test"`
	WhenCaptured     Time   `json:"when_captured"`
	LocLat           Float  `json:"loc_lat"`
	LocLon           Float  `json:"loc_lon"`
	LND7318U         Float  `json:"lnd_7318u"`
	ServiceUploaded  Time   `json:"service_uploaded"`
	ServiceTransport string `json:"service_transport"`
}

// HasLocation reports whether the record carries usable coordinates.
// (0, 0) is treated as missing; idle devices report it while GPS is cold.
func (r Record) HasLocation() bool {
	if !r.LocLat.Valid || !r.LocLon.Valid {
		return false
	}
	return r.LocLat.Value != 0 || r.LocLon.Value != 0
}
