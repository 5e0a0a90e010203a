package route

import (
	"backend-laufcoach/internal/geo"
)

const (
	// GPS jitters backward, so the window starts a little behind the cursor.
	searchBack    = 2
	searchAhead   = 10
	minSeparation = 15.0 // meters a candidate waypoint must be ahead of the runner
)

// Cursor tracks how far along a route the runner has progressed. The matched
// index never decreases while the same route is active.
type Cursor struct {
	LastMatchedIndex int
}

// Match is the result of advancing the cursor against a live position.
type Match struct {
	NextPoint       geo.Point
	NextIndex       int
	DistanceMeters  float64
	DeviationMeters float64
	Found           bool
}

// Advance searches a bounded window around the cursor for the closest route
// point, then scans forward for the next point at least minSeparation away.
// Searching the whole route every tick would be wasteful and could jump the
// cursor far ahead on a self-intersecting route.
func Advance(pos geo.Point, route []geo.Point, cursor *Cursor) Match {
	if len(route) < 2 {
		return Match{NextIndex: cursor.LastMatchedIndex}
	}

	start := cursor.LastMatchedIndex - searchBack
	if start < 0 {
		start = 0
	}
	end := cursor.LastMatchedIndex + searchAhead
	if end > len(route) {
		end = len(route)
	}

	closest := cursor.LastMatchedIndex
	minDist := geo.DistanceMeters(pos, route[closest])
	for i := start; i < end; i++ {
		if d := geo.DistanceMeters(pos, route[i]); d < minDist {
			minDist = d
			closest = i
		}
	}
	if closest > cursor.LastMatchedIndex {
		cursor.LastMatchedIndex = closest
	}

	// Deviation is measured against the segments, not the vertices: a runner
	// midway along a sparsely sampled segment is still on the route.
	deviation := minDist
	for i := start; i < end && i+1 < len(route); i++ {
		if d := geo.DistanceToSegmentKm(pos, route[i], route[i+1]) * 1000; d < deviation {
			deviation = d
		}
	}

	for i := closest + 1; i < len(route); i++ {
		if d := geo.DistanceMeters(pos, route[i]); d > minSeparation {
			return Match{
				NextPoint:       route[i],
				NextIndex:       i,
				DistanceMeters:  d,
				DeviationMeters: deviation,
				Found:           true,
			}
		}
	}

	return Match{NextIndex: cursor.LastMatchedIndex, DeviationMeters: deviation}
}

// Snap returns the route point nearest to pos, correcting noisy fixes onto
// the known path. Routes with fewer than two points disable snapping.
func Snap(pos geo.Point, route []geo.Point) geo.Point {
	if len(route) < 2 {
		return pos
	}
	return geo.SnapToNearest(pos, route)
}
