package geo

import "math"

const earthRadiusMeters = 6_371_000

// Coordinates is a WGS84 point as reported by a device.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Position is a [latitude, longitude] pair, the representation used by the
// transit API and the distance math.
type Position [2]float64

// CoordsToPosition converts device coordinates to a Position.
func CoordsToPosition(c Coordinates) Position {
	return Position{c.Latitude, c.Longitude}
}

// Distance returns the haversine great-circle distance in meters between two
// positions.
func Distance(a, b Position) float64 {
	return Haversine(a[0], a[1], b[0], b[1])
}

// Haversine returns the great-circle distance in meters between two lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
