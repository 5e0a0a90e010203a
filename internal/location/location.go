package location

import (
	"time"

	"backend-laufcoach/internal/geo"
)

// Fix is one GPS sample.
type Fix struct {
	Lat float64   `json:"latitude"`
	Lng float64   `json:"longitude"`
	At  time.Time `json:"timestamp"`
}

func (f Fix) Point() geo.Point {
	return geo.Point{Lat: f.Lat, Lng: f.Lng}
}

// Filter drops fixes that arrive faster than the minimum interval or closer
// than the minimum displacement, mirroring the watch options the app used
// (1 s, 1 m).
type Filter struct {
	MinInterval     time.Duration
	MinDisplacement float64 // meters

	last    Fix
	hasLast bool
}

func NewFilter() *Filter {
	return &Filter{MinInterval: time.Second, MinDisplacement: 1.0}
}

// Accept reports whether the fix passes the filter and, if so, records it as
// the new reference point.
func (f *Filter) Accept(fix Fix) bool {
	if !f.hasLast {
		f.last = fix
		f.hasLast = true
		return true
	}
	if fix.At.Sub(f.last.At) < f.MinInterval {
		return false
	}
	if geo.DistanceMeters(f.last.Point(), fix.Point()) < f.MinDisplacement {
		return false
	}
	f.last = fix
	f.hasLast = true
	return true
}

// Reset clears the reference point, e.g. when a session ends.
func (f *Filter) Reset() {
	f.hasLast = false
}
