package geo

import "math"

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

const earthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func DistanceMeters(a, b Point) float64 {
	return DistanceKm(a, b) * 1000
}

// PathLengthKm sums the consecutive-pair distances of points.
// Paths with fewer than two points have length 0.
func PathLengthKm(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}

// BearingDegrees returns the initial compass bearing from a to b in [0, 360).
// Identical points yield 0.
func BearingDegrees(a, b Point) float64 {
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	return math.Mod(toDeg(math.Atan2(y, x))+360, 360)
}

// DistanceToSegmentKm returns the distance from p to the segment ab,
// computed on a local tangent plane. Accurate to well under a meter at
// running-route scales; degenerate segments fall back to point distance.
func DistanceToSegmentKm(p, a, b Point) float64 {
	latRef := toRad((a.Lat + b.Lat) / 2)
	bx := toRad(b.Lng-a.Lng) * math.Cos(latRef) * earthRadiusKm
	by := toRad(b.Lat-a.Lat) * earthRadiusKm
	px := toRad(p.Lng-a.Lng) * math.Cos(latRef) * earthRadiusKm
	py := toRad(p.Lat-a.Lat) * earthRadiusKm

	segLen2 := bx*bx + by*by
	if segLen2 == 0 {
		return DistanceKm(p, a)
	}
	t := (px*bx + py*by) / segLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	dx := px - t*bx
	dy := py - t*by
	return math.Sqrt(dx*dx + dy*dy)
}

// NearestIndex returns the index of the candidate closest to p, ties going to
// the lowest index. Returns -1 for an empty slice.
func NearestIndex(p Point, candidates []Point) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		if d := DistanceKm(p, c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// SnapToNearest returns the route point closest to p. The route must be
// non-empty.
func SnapToNearest(p Point, route []Point) Point {
	return route[NearestIndex(p, route)]
}
