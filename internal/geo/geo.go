// Package geo has the spherical math behind the in-memory proximity search.
package geo

import "math"

// EarthRadiusMeters matches the radius MongoDB uses for 2dsphere distances, so both
// storage drivers agree on what "within r meters" means.
const EarthRadiusMeters = 6378100.0

// Rect is a lng/lat box: Min and Max are [lng, lat].
type Rect struct {
	Min [2]float64
	Max [2]float64
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
func deg(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle distance in meters between two lat/lng points.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Bounds returns the boxes covering every point within meters of (lat, lng).
// Usually one box; two when the circle crosses the antimeridian.
func Bounds(lat, lng, meters float64) []Rect {
	angular := meters / EarthRadiusMeters
	dLat := deg(angular)
	minLat, maxLat := lat-dLat, lat+dLat

	// The circle covers a pole: every longitude is in range.
	if maxLat >= 90 || minLat <= -90 || angular >= math.Pi/2 {
		return []Rect{{
			Min: [2]float64{-180, math.Max(minLat, -90)},
			Max: [2]float64{180, math.Min(maxLat, 90)},
		}}
	}

	// Widest longitude span sits at the tangent latitude, not at the center.
	dLng := deg(math.Asin(math.Min(1, math.Sin(angular)/math.Cos(rad(lat)))))
	minLng, maxLng := lng-dLng, lng+dLng

	switch {
	case minLng < -180:
		return []Rect{
			{Min: [2]float64{minLng + 360, minLat}, Max: [2]float64{180, maxLat}},
			{Min: [2]float64{-180, minLat}, Max: [2]float64{maxLng, maxLat}},
		}
	case maxLng > 180:
		return []Rect{
			{Min: [2]float64{minLng, minLat}, Max: [2]float64{180, maxLat}},
			{Min: [2]float64{-180, minLat}, Max: [2]float64{maxLng - 360, maxLat}},
		}
	}
	return []Rect{{Min: [2]float64{minLng, minLat}, Max: [2]float64{maxLng, maxLat}}}
}
