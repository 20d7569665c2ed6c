package geo

import (
	"math"
	"testing"
)

func TestDistanceMilesKnownPair(t *testing.T) {
	// Philadelphia city hall to the art museum, roughly 1.4 miles
	cityHall := Point{Lat: 39.9526, Lng: -75.1652}
	museum := Point{Lat: 39.9656, Lng: -75.1810}

	d := DistanceMiles(cityHall, museum)
	if d < 1.2 || d > 1.6 {
		t.Errorf("DistanceMiles = %f, want roughly 1.4", d)
	}
}

func TestDistanceZero(t *testing.T) {
	p := Point{Lat: 40.0, Lng: -75.0}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("Distance to self = %f, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Point{Lat: 40.0, Lng: -75.0}
	b := Point{Lat: 41.0, Lng: -74.0}
	if math.Abs(DistanceMeters(a, b)-DistanceMeters(b, a)) > 1e-6 {
		t.Error("Distance should be symmetric")
	}
}

func TestBoundingBoxCoversRadius(t *testing.T) {
	center := Point{Lat: 40.0, Lng: -75.0}
	const radius = 10.0

	minLat, maxLat, minLng, maxLng := BoundingBox(center, radius)

	// points just inside the radius in each cardinal direction must fall
	// inside the box
	dLat := radius * MetersPerMile / 6371000.0 * 180.0 / math.Pi
	for _, p := range []Point{
		{Lat: center.Lat + dLat*0.99, Lng: center.Lng},
		{Lat: center.Lat - dLat*0.99, Lng: center.Lng},
	} {
		if p.Lat < minLat || p.Lat > maxLat || p.Lng < minLng || p.Lng > maxLng {
			t.Errorf("Point %+v at ~%v miles fell outside the box", p, radius)
		}
	}

	if minLat >= maxLat || minLng >= maxLng {
		t.Error("Degenerate bounding box")
	}
}

func TestMetersPerMile(t *testing.T) {
	if MetersPerMile != 1609.34 {
		t.Errorf("MetersPerMile = %v, the mile constant must stay fixed", MetersPerMile)
	}
}
