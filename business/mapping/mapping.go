// Package mapping provides the map provider capability the trip planner
// consumes: geocoding, multi-waypoint driving routes, POI lookup near a
// coordinate and interpolation along route geometry.
package mapping

import (
	"context"
	"errors"
	"fmt"
)

const (
	metersPerMile  = 1609.344
	secondsPerHour = 3600.0
)

// POIKind selects the kind of point of interest to search for near a stop.
type POIKind string

const (
	POIKindRest    POIKind = "rest"
	POIKindFuel    POIKind = "fuel"
	POIKindLodging POIKind = "lodging"
)

// Location is a geocoded place. Lng/Lat are decimal degrees.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Valid reports whether the coordinates are inside the WGS84 value ranges.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// SamePoint reports whether two locations share both coordinates exactly.
func (l Location) SamePoint(other Location) bool {
	return l.Lat == other.Lat && l.Lng == other.Lng
}

// Leg is one waypoint-to-waypoint section of a Route.
type Leg struct {
	DistanceMiles float64 `json:"distance_miles"`
	DurationHours float64 `json:"duration_hours"`
}

// Route is a driving route through two or more waypoints.
// Geometry is an ordered polyline of [lng, lat] coordinate pairs.
type Route struct {
	DistanceMiles float64     `json:"distance_miles"`
	DurationHours float64     `json:"duration_hours"`
	Geometry      [][]float64 `json:"geometry"`
	Legs          []Leg       `json:"legs"`
}

// ErrNotFound is returned by Geocode when the provider has no match for an address.
var ErrNotFound = errors.New("no match found for address")

// Error wraps a transport or upstream failure from a map provider.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("map provider %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Provider is the capability interface the planner consumes. Implementations
// must be safe for concurrent callers.
//
// FindNearestPOI never fails: when the upstream has no result the
// implementation synthesizes a Location at the query coordinate with a
// descriptive address.
type Provider interface {
	Geocode(ctx context.Context, address string) (Location, error)
	Route(ctx context.Context, waypoints []Location) (*Route, error)
	FindNearestPOI(ctx context.Context, lat float64, lng float64, kind POIKind) Location
}

// EstimatedLocation builds the fallback Location used when no POI can be found
// near a coordinate.
func EstimatedLocation(lat float64, lng float64, kind POIKind) Location {
	label := "Rest Stop"
	if kind == POIKindFuel {
		label = "Fuel Stop"
	}
	return Location{
		Address: fmt.Sprintf("%s (estimated near %.4f, %.4f)", label, lat, lng),
		Lat:     lat,
		Lng:     lng,
	}
}
