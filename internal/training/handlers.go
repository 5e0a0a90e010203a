package training

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Put("/plan", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID  string      `json:"user_id"`
			Entries []PlanEntry `json:"entries"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.UserID == "" || len(body.Entries) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and entries required")
		}
		entries, err := svc.ReplacePlan(c.Context(), body.UserID, body.Entries)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(entries)
	})

	r.Get("/plan", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		entries, err := svc.Plan(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(entries)
	})

	r.Get("/plan/next", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		entry, err := svc.NextSession(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no upcoming session")
		}
		return c.JSON(entry)
	})

	r.Post("/plan/:id/complete", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.MarkCompleted(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
