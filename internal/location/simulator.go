package location

import (
	"time"

	"backend-laufcoach/internal/geo"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// Simulator walks a route at a constant pace and emits one fix per second.
// Used in tests and for replaying a route without a device.
type Simulator struct {
	Route         []geo.Point
	PaceMinPerKm  float64
	Start         time.Time
	segment       int
	intoSegmentM  float64
	lastEmittedAt time.Time
}

func NewSimulator(route []geo.Point, paceMinPerKm float64, start time.Time) *Simulator {
	return &Simulator{Route: route, PaceMinPerKm: paceMinPerKm, Start: start, lastEmittedAt: start}
}

// Next advances the runner by one second of travel and returns the fix.
// ok is false once the end of the route is reached.
func (s *Simulator) Next() (Fix, bool) {
	if len(s.Route) < 2 || s.segment >= len(s.Route)-1 {
		return Fix{}, false
	}

	speedMps := 1000.0 / (s.PaceMinPerKm * 60.0)
	remaining := speedMps

	for remaining > 0 && s.segment < len(s.Route)-1 {
		from := s.Route[s.segment]
		to := s.Route[s.segment+1]
		segLen := geo.DistanceMeters(from, to)
		left := segLen - s.intoSegmentM
		if remaining < left {
			s.intoSegmentM += remaining
			remaining = 0
		} else {
			remaining -= left
			s.segment++
			s.intoSegmentM = 0
		}
	}

	s.lastEmittedAt = s.lastEmittedAt.Add(time.Second)

	if s.segment >= len(s.Route)-1 {
		end := s.Route[len(s.Route)-1]
		return Fix{Lat: end.Lat, Lng: end.Lng, At: s.lastEmittedAt}, true
	}

	pos := moveToward(s.Route[s.segment], s.Route[s.segment+1], s.intoSegmentM)
	return Fix{Lat: pos.Lat, Lng: pos.Lng, At: s.lastEmittedAt}, true
}

// moveToward interpolates along the great circle from a toward b.
func moveToward(a, b geo.Point, distanceMeters float64) geo.Point {
	start := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lng))
	end := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lng))

	totalAngle := s1.Angle(s2.ChordAngleBetweenPoints(start, end).Angle())
	totalMeters := totalAngle.Radians() * earthRadiusMeters
	if distanceMeters >= totalMeters || totalMeters == 0 {
		return b
	}

	p := s2.Interpolate(distanceMeters/totalMeters, start, end)
	ll := s2.LatLngFromPoint(p)
	return geo.Point{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}
