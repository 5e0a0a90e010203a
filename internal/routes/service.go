package routes

import (
	"context"
	"encoding/json"
	"fmt"

	"backend-laufcoach/internal/db"
	"backend-laufcoach/internal/directions"
	"backend-laufcoach/internal/geo"

	"github.com/google/uuid"
)

// RouteFetcher snaps a marker sequence to a walkable path.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, origin, dest geo.Point, waypoints []geo.Point) (directions.Result, error)
}

type Service struct {
	db      db.Querier
	fetcher RouteFetcher
}

func NewService(db db.Querier, fetcher RouteFetcher) *Service {
	return &Service{db: db, fetcher: fetcher}
}

// Plan snaps the markers to a path and stores the resulting route. With
// fewer than two markers, or without a fetcher, the markers themselves
// become the path.
func (s *Service) Plan(ctx context.Context, input Route) (Route, error) {
	input.ID = uuid.NewString()

	input.Coordinates = input.Markers
	if s.fetcher != nil && len(input.Markers) >= 2 {
		origin := input.Markers[0]
		dest := input.Markers[len(input.Markers)-1]
		result, err := s.fetcher.FetchRoute(ctx, origin, dest, input.Markers[1:len(input.Markers)-1])
		if err != nil {
			return Route{}, fmt.Errorf("snap route: %w", err)
		}
		if len(result.Polyline) > 0 {
			input.Coordinates = result.Polyline
		}
	}
	input.DistanceKm = geo.PathLengthKm(input.Coordinates)

	markers, err := json.Marshal(input.Markers)
	if err != nil {
		return Route{}, err
	}
	coords, err := json.Marshal(input.Coordinates)
	if err != nil {
		return Route{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, user_id, name, distance_km, markers, coordinates)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name, input.DistanceKm, markers, coords)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Route{}, err
	}
	return input, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, distance_km, created_at
		FROM routes WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.DistanceKm, &r.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func (s *Service) Get(ctx context.Context, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, distance_km, markers, coordinates, created_at
		FROM routes WHERE id=$1
	`, id)
	var r Route
	var markers, coords []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.DistanceKm, &markers, &coords, &r.CreatedAt); err != nil {
		return Route{}, err
	}
	if len(markers) > 0 {
		if err := json.Unmarshal(markers, &r.Markers); err != nil {
			return Route{}, err
		}
	}
	if len(coords) > 0 {
		if err := json.Unmarshal(coords, &r.Coordinates); err != nil {
			return Route{}, err
		}
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	return err
}
