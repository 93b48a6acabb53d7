package mapping

import "math"

// PointAlong returns the lat,lng at distanceMiles along a route polyline of
// totalMiles length. Interpolation is by polyline vertex index fraction, the
// same approximation the route geometry was drawn with. Results are clamped
// to the ends of the polyline.
func PointAlong(geometry [][]float64, distanceMiles float64, totalMiles float64) (float64, float64) {
	if len(geometry) == 0 {
		return 0, 0
	}

	fraction := 0.0
	if totalMiles > 0 {
		fraction = distanceMiles / totalMiles
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	targetIndex := int(fraction * float64(len(geometry)-1))
	if targetIndex >= len(geometry) {
		targetIndex = len(geometry) - 1
	}

	point := geometry[targetIndex]
	//geometry points are lng,lat pairs
	return point[1], point[0]
}

// simpleLatLngDistance calculates the approximate distance between two pairs
// of coordinates with simplistic calculation of longitudinal distance based on
// latitudes. Adequate for coordinates that are close together, as when ranking
// POI candidates near a point on the route.
// returns distance in METERS
func simpleLatLngDistance(lat1, lon1, lat2, lon2 float64) float64 {
	//take average latitude and convert to radians
	lat := lat1 + lat2
	if lat != 0 { // don't divide by zero
		lat = (lat / 2) * 0.01745329
	}

	diffLat := 111300 * (lat1 - lat2)
	// at equator one degree is 111300 meters, use average latitude to convert
	diffLon := 111300 * math.Cos(lat) * (lon1 - lon2)

	return math.Sqrt((diffLon * diffLon) + (diffLat * diffLat))
}
