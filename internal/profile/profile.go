package profile

import (
	"context"
	"time"

	"backend-laufcoach/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// DefaultWeightKg is assumed when a runner never entered their weight.
const DefaultWeightKg = 70.0

type Profile struct {
	UserID    string    `json:"user_id"`
	WeightKg  float64   `json:"weight_kg"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// WeightKg never fails the caller: missing rows and query errors fall
// back to the default so calorie math always has a weight.
func (s *Service) WeightKg(ctx context.Context, userID string) float64 {
	var weight float64
	err := s.db.QueryRow(ctx, `
		SELECT weight_kg FROM profiles WHERE user_id=$1
	`, userID).Scan(&weight)
	if err != nil || weight <= 0 {
		return DefaultWeightKg
	}
	return weight
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, weight_kg, updated_at FROM profiles WHERE user_id=$1
	`, userID)
	var p Profile
	if err := row.Scan(&p.UserID, &p.WeightKg, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return Profile{UserID: userID, WeightKg: DefaultWeightKg}, nil
		}
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Upsert(ctx context.Context, userID string, weightKg float64) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, weight_kg, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (user_id) DO UPDATE SET weight_kg=EXCLUDED.weight_kg, updated_at=now()
		RETURNING updated_at
	`, userID, weightKg)
	p := Profile{UserID: userID, WeightKg: weightKg}
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/:user_id", authMiddleware, func(c *fiber.Ctx) error {
		p, err := svc.Get(c.Context(), c.Params("user_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	r.Put("/:user_id", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			WeightKg float64 `json:"weight_kg"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.WeightKg <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "weight_kg must be positive")
		}
		p, err := svc.Upsert(c.Context(), c.Params("user_id"), body.WeightKg)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})
}
