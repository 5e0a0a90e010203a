package workout

import (
	"time"

	"backend-laufcoach/internal/geo"
)

// Entry is one finished run.
type Entry struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	StartedAt   time.Time   `json:"started_at"`
	DistanceKm  float64     `json:"distance_km"`
	DurationSec int64       `json:"duration_sec"`
	AveragePace float64     `json:"average_pace"`
	Calories    float64     `json:"calories"`
	Path        []geo.Point `json:"path,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Stats aggregates a user's history.
type Stats struct {
	UserID          string  `json:"user_id"`
	WorkoutCount    int     `json:"workout_count"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalDurationS  int64   `json:"total_duration_sec"`
	TotalCalories   float64 `json:"total_calories"`
	AveragePace     float64 `json:"average_pace"`
}
