package session

import (
	"backend-laufcoach/internal/geo"
	"backend-laufcoach/internal/location"
	"backend-laufcoach/internal/training"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, mgr *Manager, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID           string      `json:"user_id"`
			TargetPace       string      `json:"target_pace"`
			TargetDistanceKm float64     `json:"target_distance_km"`
			Route            []geo.Point `json:"route"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}

		req := CreateRequest{
			UserID:           body.UserID,
			TargetDistanceKm: body.TargetDistanceKm,
			TargetRoute:      body.Route,
		}
		if body.TargetPace != "" {
			pace, err := training.ParsePace(body.TargetPace)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			req.TargetPace = pace
		}

		state, err := mgr.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(state)
	})

	r.Post("/:id/countdown/extend", authMiddleware, func(c *fiber.Ctx) error {
		return transition(c, mgr.ExtendCountdown)
	})

	r.Post("/:id/countdown/skip", authMiddleware, func(c *fiber.Ctx) error {
		return transition(c, mgr.SkipCountdown)
	})

	r.Post("/:id/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix location.Fix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		state, err := mgr.OnFix(c.Params("id"), fix)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(state)
	})

	r.Post("/:id/pause", authMiddleware, func(c *fiber.Ctx) error {
		return transition(c, mgr.Pause)
	})

	r.Post("/:id/resume", authMiddleware, func(c *fiber.Ctx) error {
		return transition(c, mgr.Resume)
	})

	r.Post("/:id/replay", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			PaceMinPerKm float64 `json:"pace_min_per_km"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		state, err := mgr.Replay(c.Params("id"), body.PaceMinPerKm)
		if err != nil {
			if err == errNotFound {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(state)
	})

	r.Post("/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		entry, err := mgr.Stop(c.Context(), c.Params("id"))
		if err != nil {
			if err == errNotFound {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.JSON(entry)
	})

	r.Post("/:id/cancel", authMiddleware, func(c *fiber.Ctx) error {
		if err := mgr.Cancel(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		state, err := mgr.State(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(state)
	})
}

func transition(c *fiber.Ctx, op func(string) (State, error)) error {
	state, err := op(c.Params("id"))
	if err != nil {
		if err == errNotFound {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(state)
}
