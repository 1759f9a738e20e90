// Package geo provides pure great-circle geometry over the WGS-84 sphere.
//
// Every function here is total: there is no invalid input short of NaN, and
// none of them touch external state.
package geo

import "math"

// EarthRadiusNM is the mean Earth radius in nautical miles, used by every
// distance and interpolation calculation in this package.
const EarthRadiusNM = 3440.065

// Point is a WGS-84 geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// clampUnit clamps x to [-1, 1], guarding acos/asin against floating-point
// overshoot near antipodal points.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// DistanceNM returns the great-circle distance between a and b in nautical
// miles, using the haversine formula.
func DistanceNM(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(clampUnit(h)), math.Sqrt(clampUnit(1-h)))

	return EarthRadiusNM * c
}

// InitialBearing returns the initial great-circle bearing from a to b in
// degrees, in [0, 360).
func InitialBearing(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x)

	deg := math.Mod(toDegrees(theta)+360, 360)
	return deg
}

// Interpolate returns n+1 points along the great circle from a to b,
// including both endpoints, using spherical linear interpolation (slerp).
//
// When n <= 0, it returns []Point{a, b}; when a and b are coincident, it
// returns n+1 copies of a.
func Interpolate(a, b Point, n int) []Point {
	if n <= 0 {
		return []Point{a, b}
	}

	lat1, lon1 := toRadians(a.Lat), toRadians(a.Lon)
	lat2, lon2 := toRadians(b.Lat), toRadians(b.Lon)

	x1, y1, z1 := math.Cos(lat1)*math.Cos(lon1), math.Cos(lat1)*math.Sin(lon1), math.Sin(lat1)
	x2, y2, z2 := math.Cos(lat2)*math.Cos(lon2), math.Cos(lat2)*math.Sin(lon2), math.Sin(lat2)

	dot := clampUnit(x1*x2 + y1*y2 + z1*z2)
	angle := math.Acos(dot)

	points := make([]Point, 0, n+1)
	if angle < 1e-12 {
		// Coincident endpoints: nothing to interpolate along.
		for i := 0; i <= n; i++ {
			points = append(points, a)
		}
		return points
	}

	sinAngle := math.Sin(angle)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		A := math.Sin((1-f)*angle) / sinAngle
		B := math.Sin(f*angle) / sinAngle

		x := A*x1 + B*x2
		y := A*y1 + B*y2
		z := A*z1 + B*z2

		lat := math.Atan2(z, math.Sqrt(x*x+y*y))
		lon := math.Atan2(y, x)

		points = append(points, Point{Lat: toDegrees(lat), Lon: toDegrees(lon)})
	}
	return points
}
