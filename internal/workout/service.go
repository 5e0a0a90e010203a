package workout

import (
	"context"
	"encoding/json"
	"time"

	"backend-laufcoach/internal/db"
	"backend-laufcoach/internal/geo"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Save(ctx context.Context, input Entry) (Entry, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}
	path, err := json.Marshal(input.Path)
	if err != nil {
		return Entry{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO workouts (id, user_id, started_at, distance_km, duration_sec, average_pace, calories, path)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.UserID, input.StartedAt, input.DistanceKm, input.DurationSec, input.AveragePace, input.Calories, path)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Entry{}, err
	}
	return input, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, started_at, distance_km, duration_sec, average_pace, calories, created_at
		FROM workouts WHERE user_id=$1
		ORDER BY started_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.StartedAt, &e.DistanceKm, &e.DurationSec, &e.AveragePace, &e.Calories, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, started_at, distance_km, duration_sec, average_pace, calories, path, created_at
		FROM workouts WHERE id=$1
	`, id)
	var e Entry
	var path []byte
	if err := row.Scan(&e.ID, &e.UserID, &e.StartedAt, &e.DistanceKm, &e.DurationSec, &e.AveragePace, &e.Calories, &path, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	if len(path) > 0 {
		var points []geo.Point
		if err := json.Unmarshal(path, &points); err != nil {
			return Entry{}, err
		}
		e.Path = points
	}
	return e, nil
}

func (s *Service) StatsByUser(ctx context.Context, userID string) (Stats, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(distance_km),0), COALESCE(SUM(duration_sec),0), COALESCE(SUM(calories),0)
		FROM workouts WHERE user_id=$1
	`, userID)
	stats := Stats{UserID: userID}
	if err := row.Scan(&stats.WorkoutCount, &stats.TotalDistanceKm, &stats.TotalDurationS, &stats.TotalCalories); err != nil {
		return Stats{}, err
	}
	if stats.TotalDistanceKm > 0 {
		stats.AveragePace = (float64(stats.TotalDurationS) / 60) / stats.TotalDistanceKm
	}
	return stats, nil
}
