package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/services"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	stats   *services.StatsService
	timeout time.Duration
}

func NewStatsHandler(stats *services.StatsService, timeout time.Duration) *StatsHandler {
	return &StatsHandler{stats: stats, timeout: timeout}
}

func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	stats, err := h.stats.Compute(ctx)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(stats)
}
