// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package safecast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatTolerantDecoding(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		valid bool
	}{
		{"number", `21.5`, 21.5, true},
		{"quoted number", `"21.5"`, 21.5, true},
		{"integer", `42`, 42, true},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage", `"n/a"`, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f Float
			require.NoError(t, json.Unmarshal([]byte(tc.input), &f))
			assert.Equal(t, tc.valid, f.Valid)
			if tc.valid {
				assert.Equal(t, tc.want, f.Value)
			}
		})
	}
}

func TestIntToleratesFloatEncoding(t *testing.T) {
	var i Int
	require.NoError(t, json.Unmarshal([]byte(`"65049.0"`), &i))
	assert.True(t, i.Valid)
	assert.Equal(t, int64(65049), i.Value)
}

func TestTimeAcceptsUpstreamLayouts(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"rfc3339", `"2025-06-01T12:00:00Z"`, true},
		{"no zone", `"2025-06-01T12:00:00"`, true},
		{"space separated", `"2025-06-01 12:00:00"`, true},
		{"date only", `"2025-06-01"`, true},
		{"null", `null`, false},
		{"garbage", `"last tuesday"`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ts Time
			require.NoError(t, json.Unmarshal([]byte(tc.input), &ts))
			assert.Equal(t, tc.valid, ts.Valid)
			if tc.valid {
				assert.Equal(t, 2025, ts.Value.Year())
				assert.Equal(t, time.June, ts.Value.Month())
			}
		})
	}
}

func TestBoolVariants(t *testing.T) {
	for input, want := range map[string]bool{
		`true`: true, `"true"`: true, `1`: true,
		`false`: false, `"false"`: false, `0`: false,
	} {
		var b Bool
		require.NoError(t, json.Unmarshal([]byte(input), &b))
		assert.True(t, b.Valid, input)
		assert.Equal(t, want, b.Value, input)
	}

	var b Bool
	require.NoError(t, json.Unmarshal([]byte(`"maybe"`), &b))
	assert.False(t, b.Valid)
}

func TestRecordHasLocation(t *testing.T) {
	rec := Record{
		LocLat: Float{Value: 43.9, Valid: true},
		LocLon: Float{Value: -79.0, Valid: true},
	}
	assert.True(t, rec.HasLocation())

	// (0, 0) means GPS not locked yet
	rec.LocLat = Float{Value: 0, Valid: true}
	rec.LocLon = Float{Value: 0, Valid: true}
	assert.False(t, rec.HasLocation())

	rec.LocLon = Float{}
	assert.False(t, rec.HasLocation())
}
