package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_hunt/repository"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store   repository.Store
	timeout time.Duration
}

func NewHealthHandler(store repository.Store, timeout time.Duration) *HealthHandler {
	return &HealthHandler{store: store, timeout: timeout}
}

func Welcome(c *fiber.Ctx) error {
	return c.SendString("Hello from TutorHunt Server....")
}

// Health reports whether the store answers a ping.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unavailable",
			"message": "database unreachable",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
