package geo

import "math"

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// Distance returns the great-circle distance in meters between two
// coordinates, computed with the haversine formula.
func Distance(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(s))
}

// PathLength returns the cumulative great-circle distance in meters
// along consecutive vertex pairs.
func PathLength(coords []LatLng) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1], coords[i])
	}
	return total
}

// RingArea returns the area in square meters of the closed polygon
// described by the open ring, using a spherical excess approximation:
// the sum of (λ2-λ1)·(2+sin φ1+sin φ2) over consecutive vertex pairs
// including the implied closing edge, scaled by R²/2. The result is
// always non-negative; rings below 3 vertices have zero area.
func RingArea(coords []LatLng) float64 {
	n := len(coords)
	if n < 3 {
		return 0
	}

	const d2r = math.Pi / 180
	var area float64
	for i := 0; i < n; i++ {
		p1 := coords[i]
		p2 := coords[(i+1)%n]
		area += (p2.Lng - p1.Lng) * d2r *
			(2 + math.Sin(p1.Lat*d2r) + math.Sin(p2.Lat*d2r))
	}
	return math.Abs(area * EarthRadius * EarthRadius / 2)
}
