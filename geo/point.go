package geo

import "math"

// MetersPerMile is the single mile conversion constant used everywhere a
// radius crosses the metric boundary.
const MetersPerMile = 1609.34

// earthRadiusMeters is the mean radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0
	la1 := a.Lat * math.Pi / 180.0
	la2 := b.Lat * math.Pi / 180.0
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(la1)*math.Cos(la2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func DistanceMiles(a, b Point) float64 {
	return DistanceMeters(a, b) / MetersPerMile
}

// BoundingBox returns a lat/lng window guaranteed to contain every point
// within radiusMiles of center. It over-covers; callers still apply the
// exact distance filter.
func BoundingBox(center Point, radiusMiles float64) (minLat, maxLat, minLng, maxLng float64) {
	radiusMeters := radiusMiles * MetersPerMile
	dLat := radiusMeters / earthRadiusMeters * 180.0 / math.Pi
	minLat = center.Lat - dLat
	maxLat = center.Lat + dLat

	cosLat := math.Cos(center.Lat * math.Pi / 180.0)
	if cosLat < 0.01 {
		// near the poles the window degenerates, take the whole band
		return minLat, maxLat, -180, 180
	}
	dLng := dLat / cosLat
	minLng = center.Lng - dLng
	maxLng = center.Lng + dLng
	return minLat, maxLat, minLng, maxLng
}
