package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(19.43, -99.13, 19.43, -99.13), 1e-9)

	// one degree of latitude along a meridian
	oneDegree := math.Pi / 180 * EarthRadiusMeters
	assert.InDelta(t, oneDegree, Distance(0, 0, 1, 0), 1e-6)

	// symmetric
	a := Distance(19.4326, -99.1332, 19.4270, -99.1677)
	b := Distance(19.4270, -99.1677, 19.4326, -99.1332)
	assert.InDelta(t, a, b, 1e-9)
	assert.InDelta(t, 3670, a, 50)
}

func contains(rects []Rect, lat, lng float64) bool {
	for _, r := range rects {
		if lng >= r.Min[0] && lng <= r.Max[0] && lat >= r.Min[1] && lat <= r.Max[1] {
			return true
		}
	}
	return false
}

func TestBounds_CoverTheCircle(t *testing.T) {
	centers := [][2]float64{{19.43, -99.13}, {60, 10}, {-45, 170}, {0, 0}}
	for _, c := range centers {
		lat, lng := c[0], c[1]
		const r = 5000.0
		rects := Bounds(lat, lng, r)
		// sample points on the circle boundary, pulled in slightly
		for bearing := 0.0; bearing < 360; bearing += 15 {
			plat, plng := destination(lat, lng, bearing, r*0.999)
			assert.LessOrEqual(t, Distance(lat, lng, plat, plng), r)
			assert.True(t, contains(rects, plat, plng), "center %v bearing %v", c, bearing)
		}
	}
}

func TestBounds_Antimeridian(t *testing.T) {
	rects := Bounds(0, 179.99, 5000)
	assert.Len(t, rects, 2)
	assert.True(t, contains(rects, 0, -179.99))
	assert.True(t, contains(rects, 0, 179.98))
}

func TestBounds_Pole(t *testing.T) {
	rects := Bounds(89.99, 0, 5000)
	assert.Len(t, rects, 1)
	assert.Equal(t, -180.0, rects[0].Min[0])
	assert.Equal(t, 180.0, rects[0].Max[0])
}

// destination returns the point reached from (lat, lng) after travelling meters on bearing.
func destination(lat, lng, bearing, meters float64) (float64, float64) {
	d := meters / EarthRadiusMeters
	b := rad(bearing)
	lat1, lng1 := rad(lat), rad(lng)
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(b))
	lng2 := lng1 + math.Atan2(math.Sin(b)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))
	out := deg(lng2)
	if out > 180 {
		out -= 360
	} else if out < -180 {
		out += 360
	}
	return deg(lat2), out
}
