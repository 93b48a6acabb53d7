package planning

import (
	"context"
	logger "log"
	"os"

	"github.com/OpenRoadTools/haulcast/business/mapping"
)

func testLogger() *logger.Logger {
	return logger.New(os.Stdout, "TEST : ", logger.LstdFlags)
}

// fakeProvider serves canned routes and synthesized POIs so planner tests are
// fully deterministic.
type fakeProvider struct {
	route    *mapping.Route
	routeErr error
	geocoded map[string]mapping.Location
}

func (f *fakeProvider) Geocode(_ context.Context, address string) (mapping.Location, error) {
	if location, present := f.geocoded[address]; present {
		return location, nil
	}
	return mapping.Location{}, mapping.ErrNotFound
}

func (f *fakeProvider) Route(_ context.Context, _ []mapping.Location) (*mapping.Route, error) {
	if f.routeErr != nil {
		return nil, f.routeErr
	}
	return f.route, nil
}

func (f *fakeProvider) FindNearestPOI(_ context.Context, lat float64, lng float64, kind mapping.POIKind) mapping.Location {
	return mapping.EstimatedLocation(lat, lng, kind)
}

// fakeRoute builds a two leg route at nice round numbers. Leg 0 runs from the
// trip start to the pickup, leg 1 from pickup to dropoff.
func fakeRoute(leg0Miles, leg0Hours, leg1Miles, leg1Hours float64) *mapping.Route {
	return &mapping.Route{
		DistanceMiles: leg0Miles + leg1Miles,
		DurationHours: leg0Hours + leg1Hours,
		Geometry: [][]float64{
			{-87.6, 41.9},
			{-88.5, 42.0},
			{-89.5, 42.3},
			{-90.5, 42.6},
			{-91.5, 42.9},
		},
		Legs: []mapping.Leg{
			{DistanceMiles: leg0Miles, DurationHours: leg0Hours},
			{DistanceMiles: leg1Miles, DurationHours: leg1Hours},
		},
	}
}

var (
	testCurrent = mapping.Location{Address: "Chicago, IL", Lat: 41.9, Lng: -87.6}
	testPickup  = mapping.Location{Address: "Rockford, IL", Lat: 42.3, Lng: -89.1}
	testDropoff = mapping.Location{Address: "Des Moines, IA", Lat: 41.6, Lng: -93.6}
)
