package training

import "time"

// PlanEntry is one scheduled session of a training plan.
type PlanEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Day         int       `json:"day"`
	Kind        string    `json:"kind"`
	DistanceKm  float64   `json:"distance_km,omitempty"`
	TargetPace  float64   `json:"target_pace,omitempty"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}
