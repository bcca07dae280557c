// Package geocode resolves coordinates to human-readable place names.
package geocode

import (
	"context"
	"errors"
	"strconv"
)

// ErrNoResult is returned when the provider answers without a place name
var ErrNoResult = errors.New("no place name for coordinates")

// Result is a reverse geocoding answer
type Result struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Reverser converts coordinates to a place name
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (Result, error)
}

// FormatCoordinates renders "lat, lon" using the shortest exact decimal form,
// e.g. FormatCoordinates(40.7128, -74.0060) == "40.7128, -74.006".
func FormatCoordinates(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64)
}

// PlaceName resolves coordinates once and falls back to FormatCoordinates on any
// failure. The second return value is false when the fallback was used.
func PlaceName(ctx context.Context, r Reverser, lat, lon float64) (string, bool) {
	if r == nil {
		return FormatCoordinates(lat, lon), false
	}
	result, err := r.Reverse(ctx, lat, lon)
	if err != nil || result.DisplayName == "" {
		return FormatCoordinates(lat, lon), false
	}
	return result.DisplayName, true
}
