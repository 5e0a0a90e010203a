package routes

import (
	"time"

	"backend-laufcoach/internal/geo"
)

// Route is a planned running route: the markers the user dropped and the
// snapped path through them.
type Route struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	DistanceKm  float64     `json:"distance_km"`
	Markers     []geo.Point `json:"markers,omitempty"`
	Coordinates []geo.Point `json:"coordinates,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
