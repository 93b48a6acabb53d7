package mapping

import (
	"context"
	"fmt"
	logger "log"
	"net/url"
	"time"

	"github.com/OpenRoadTools/haulcast/foundation/httpclient"
)

const mapboxBaseURL = "https://api.mapbox.com"

// poiSearchQueries maps a POIKind to the place search terms used against the
// geocoding endpoint.
var poiSearchQueries = map[POIKind]string{
	POIKindRest:    "rest area,truck stop,travel plaza",
	POIKindFuel:    "gas station,truck stop,fuel",
	POIKindLodging: "rest area,truck stop,parking,hotel",
}

// MapboxProvider implements Provider against the Mapbox geocoding and
// directions web services. Native Mapbox units (meters, seconds) are converted
// to miles and hours at this boundary.
type MapboxProvider struct {
	log         *logger.Logger
	client      *httpclient.Client
	accessToken string
	baseURL     string
}

// MakeMapboxProvider creates a MapboxProvider. An empty baseURL selects the
// public Mapbox API.
func MakeMapboxProvider(log *logger.Logger, accessToken string, baseURL string, timeout time.Duration) *MapboxProvider {
	if baseURL == "" {
		baseURL = mapboxBaseURL
	}
	return &MapboxProvider{
		log:         log,
		client:      httpclient.MakeClient(timeout),
		accessToken: accessToken,
		baseURL:     baseURL,
	}
}

type mapboxGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type mapboxPointGeometry struct {
	Coordinates []float64 `json:"coordinates"`
}

type mapboxFeature struct {
	PlaceName string              `json:"place_name"`
	Geometry  mapboxPointGeometry `json:"geometry"`
}

type mapboxGeocodeResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type mapboxRoute struct {
	Distance float64        `json:"distance"`
	Duration float64        `json:"duration"`
	Geometry mapboxGeometry `json:"geometry"`
	Legs     []mapboxLeg    `json:"legs"`
}

type mapboxDirectionsResponse struct {
	Routes []mapboxRoute `json:"routes"`
}

// Geocode resolves an address to its first geocoding match.
// returns ErrNotFound when mapbox has no features for the address
func (m *MapboxProvider) Geocode(ctx context.Context, address string) (Location, error) {
	requestURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", m.baseURL, url.PathEscape(address))
	params := url.Values{}
	params.Set("access_token", m.accessToken)
	params.Set("limit", "1")

	var response mapboxGeocodeResponse
	if err := m.client.GetJSON(ctx, requestURL, params, &response); err != nil {
		return Location{}, &Error{Op: "geocode", Err: err}
	}
	if len(response.Features) == 0 {
		return Location{}, fmt.Errorf("geocoding %q: %w", address, ErrNotFound)
	}

	feature := response.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return Location{}, &Error{Op: "geocode", Err: fmt.Errorf("malformed feature for %q", address)}
	}
	return Location{
		Address: feature.PlaceName,
		Lat:     feature.Geometry.Coordinates[1],
		Lng:     feature.Geometry.Coordinates[0],
	}, nil
}

// Route fetches a driving route through waypoints in order.
func (m *MapboxProvider) Route(ctx context.Context, waypoints []Location) (*Route, error) {
	if len(waypoints) < 2 {
		return nil, &Error{Op: "route", Err: fmt.Errorf("%d waypoints provided, at least 2 required", len(waypoints))}
	}

	//mapbox wants lng,lat;lng,lat;... in the path
	coordinates := ""
	for i, wp := range waypoints {
		if i > 0 {
			coordinates += ";"
		}
		coordinates += fmt.Sprintf("%f,%f", wp.Lng, wp.Lat)
	}

	requestURL := fmt.Sprintf("%s/directions/v5/mapbox/driving/%s", m.baseURL, coordinates)
	params := url.Values{}
	params.Set("access_token", m.accessToken)
	params.Set("geometries", "geojson")
	params.Set("overview", "full")

	var response mapboxDirectionsResponse
	if err := m.client.GetJSON(ctx, requestURL, params, &response); err != nil {
		return nil, &Error{Op: "route", Err: err}
	}
	if len(response.Routes) == 0 {
		return nil, &Error{Op: "route", Err: fmt.Errorf("no route found through %d waypoints", len(waypoints))}
	}

	best := response.Routes[0]
	result := Route{
		DistanceMiles: best.Distance / metersPerMile,
		DurationHours: best.Duration / secondsPerHour,
		Geometry:      best.Geometry.Coordinates,
	}
	for _, leg := range best.Legs {
		result.Legs = append(result.Legs, Leg{
			DistanceMiles: leg.Distance / metersPerMile,
			DurationHours: leg.Duration / secondsPerHour,
		})
	}
	return &result, nil
}

// FindNearestPOI searches for the closest point of interest of the requested
// kind near lat,lng. Upstream failures and empty results both fall back to a
// synthesized location at the query coordinate, so callers always get a value.
func (m *MapboxProvider) FindNearestPOI(ctx context.Context, lat float64, lng float64, kind POIKind) Location {
	query, ok := poiSearchQueries[kind]
	if !ok {
		query = poiSearchQueries[POIKindRest]
	}

	requestURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", m.baseURL, url.PathEscape(query))
	params := url.Values{}
	params.Set("access_token", m.accessToken)
	params.Set("proximity", fmt.Sprintf("%f,%f", lng, lat))
	params.Set("limit", "5")
	params.Set("types", "poi")

	var response mapboxGeocodeResponse
	if err := m.client.GetJSON(ctx, requestURL, params, &response); err != nil {
		m.log.Printf("FindNearestPOI: falling back to estimated %s location at %.4f,%.4f, error:%v",
			kind, lat, lng, err)
		return EstimatedLocation(lat, lng, kind)
	}
	if len(response.Features) == 0 {
		return EstimatedLocation(lat, lng, kind)
	}

	//rank candidates by flat distance from the query point
	bestIndex := -1
	bestDistance := 0.0
	for i, feature := range response.Features {
		if len(feature.Geometry.Coordinates) < 2 {
			continue
		}
		d := simpleLatLngDistance(lat, lng, feature.Geometry.Coordinates[1], feature.Geometry.Coordinates[0])
		if bestIndex < 0 || d < bestDistance {
			bestIndex = i
			bestDistance = d
		}
	}
	if bestIndex < 0 {
		return EstimatedLocation(lat, lng, kind)
	}

	best := response.Features[bestIndex]
	return Location{
		Address: best.PlaceName,
		Lat:     best.Geometry.Coordinates[1],
		Lng:     best.Geometry.Coordinates[0],
	}
}
