package go_geonn

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// boundSlack shaves pruning bounds so rounding in the bound never hides an equally close point.
const boundSlack = 1e-9

// Haversine returns the great-circle distance in kilometres between two points.
// Coincident points are exactly 0 apart.
func Haversine(p1, p2 Point) float64 {
	return haversineLatLng(s2.LatLngFromDegrees(p1.Lat, p1.Lng), s2.LatLngFromDegrees(p2.Lat, p2.Lng))
}

func haversine(a, b indexedPoint) float64 {
	return haversineLatLng(a.ll, b.ll)
}

func haversineLatLng(a, b s2.LatLng) float64 {
	lat1, lat2 := float64(a.Lat), float64(b.Lat)
	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLng := math.Sin(float64(b.Lng-a.Lng) / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(clampUnit(math.Sqrt(h)))
}

// ToCartesian projects p onto the unit sphere: x=cosθcosφ, y=sinθcosφ, z=sinφ.
func ToCartesian(p Point) r3.Vector {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)).Vector
}

// Euclidean returns the squared chord length between the projections of p1 and p2,
// or the chord length itself when squareRoot is set.
func Euclidean(p1, p2 Point, squareRoot bool) float64 {
	d := ToCartesian(p1).Sub(ToCartesian(p2)).Norm2()
	if squareRoot {
		return math.Sqrt(d)
	}
	return d
}

func chord2(a, b indexedPoint) float64 {
	return a.v.Sub(b.v).Norm2()
}

// chord2FromKM converts a great-circle distance into the squared chord between its ends.
// +Inf stays +Inf.
func chord2FromKM(km float64) float64 {
	if math.IsInf(km, 1) {
		return km
	}
	c := 2 * math.Sin(math.Min(km, math.Pi*earthRadiusKm)/(2*earthRadiusKm))
	return c * c
}

// latitudeBoundKM is the distance from q to the circle of latitude lat0 (radians).
// Circles of latitude are not great circles, so |Δφ|·R is exact.
func latitudeBoundKM(q indexedPoint, lat0 float64) float64 {
	return earthRadiusKm * math.Abs(q.lat()-lat0)
}

// meridianBoundKM is the geodesic distance from q to the great circle containing the
// meridian lng0 (radians): R·asin(|cosφ·sin(λ−λ0)|).
func meridianBoundKM(q indexedPoint, lng0 float64) float64 {
	normal := r3.Vector{X: -math.Sin(lng0), Y: math.Cos(lng0)}
	return earthRadiusKm * math.Asin(clampUnit(math.Abs(q.v.Dot(normal))))
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
