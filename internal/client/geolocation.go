package client

import (
	"context"
	"errors"

	"github.com/quocanhngo/agrosynth/pkg/geocode"
)

// ErrLocationUnavailable is returned by locators without a position source
var ErrLocationUnavailable = errors.New("location unavailable")

// Coordinates is a position in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FallbackCoordinates (New York City) stand in when no position is available
var FallbackCoordinates = Coordinates{Lat: 40.7128, Lng: -74.0060}

// Locator reports the device position
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// FixedLocator always reports the same position, e.g. one given on the command line
type FixedLocator Coordinates

func (f FixedLocator) CurrentPosition(context.Context) (Coordinates, error) {
	return Coordinates(f), nil
}

// UnavailableLocator is used when the platform has no location source
type UnavailableLocator struct{}

func (UnavailableLocator) CurrentPosition(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrLocationUnavailable
}

// Resolver turns the device position into coordinates and a place name.
// Every lookup is a single attempt; failures fall back silently.
type Resolver struct {
	locator  Locator
	reverser geocode.Reverser
}

func NewResolver(locator Locator, reverser geocode.Reverser) *Resolver {
	if locator == nil {
		locator = UnavailableLocator{}
	}
	return &Resolver{locator: locator, reverser: reverser}
}

// Locate returns the current position, or FallbackCoordinates with false
func (r *Resolver) Locate(ctx context.Context) (Coordinates, bool) {
	c, err := r.locator.CurrentPosition(ctx)
	if err != nil {
		return FallbackCoordinates, false
	}
	return c, true
}

// PlaceName returns a display name for c, or "lat, lng" when lookup fails
func (r *Resolver) PlaceName(ctx context.Context, c Coordinates) string {
	name, _ := geocode.PlaceName(ctx, r.reverser, c.Lat, c.Lng)
	return name
}
