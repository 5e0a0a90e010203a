package training

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"backend-laufcoach/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// ReplacePlan swaps a user's plan for a new one.
func (s *Service) ReplacePlan(ctx context.Context, userID string, entries []PlanEntry) ([]PlanEntry, error) {
	if _, err := s.db.Exec(ctx, `DELETE FROM plan_entries WHERE user_id=$1`, userID); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].ID = uuid.NewString()
		entries[i].UserID = userID
		if entries[i].Kind == "" {
			entries[i].Kind = "run"
		}
		row := s.db.QueryRow(ctx, `
			INSERT INTO plan_entries (id, user_id, day, kind, distance_km, target_pace, description)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at
		`, entries[i].ID, userID, entries[i].Day, entries[i].Kind, entries[i].DistanceKm, entries[i].TargetPace, entries[i].Description)
		if err := row.Scan(&entries[i].CreatedAt); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Service) Plan(ctx context.Context, userID string) ([]PlanEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, day, kind, distance_km, target_pace, description, completed, created_at
		FROM plan_entries WHERE user_id=$1
		ORDER BY day
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlanEntry
	for rows.Next() {
		var e PlanEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Day, &e.Kind, &e.DistanceKm, &e.TargetPace, &e.Description, &e.Completed, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NextSession is the first uncompleted run of the plan. It drives the
// live session's distance and pace targets.
func (s *Service) NextSession(ctx context.Context, userID string) (PlanEntry, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, day, kind, distance_km, target_pace, description, completed, created_at
		FROM plan_entries
		WHERE user_id=$1 AND kind='run' AND NOT completed
		ORDER BY day
		LIMIT 1
	`, userID)
	var e PlanEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.Day, &e.Kind, &e.DistanceKm, &e.TargetPace, &e.Description, &e.Completed, &e.CreatedAt); err != nil {
		return PlanEntry{}, err
	}
	return e, nil
}

func (s *Service) MarkCompleted(ctx context.Context, entryID string) error {
	_, err := s.db.Exec(ctx, `UPDATE plan_entries SET completed=true WHERE id=$1`, entryID)
	return err
}

// ParsePace converts "5:30" into minutes per kilometer (5.5). A plain
// decimal like "5.5" passes through.
func ParsePace(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty pace")
	}
	if minutes, seconds, found := strings.Cut(value, ":"); found {
		m, err := strconv.Atoi(minutes)
		if err != nil {
			return 0, fmt.Errorf("bad pace %q: %w", value, err)
		}
		s, err := strconv.Atoi(seconds)
		if err != nil || s < 0 || s > 59 {
			return 0, fmt.Errorf("bad pace %q", value)
		}
		return float64(m) + float64(s)/60, nil
	}
	pace, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("bad pace %q: %w", value, err)
	}
	return pace, nil
}
