package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, health *handlers.HealthHandler, stats *handlers.StatsHandler) {
	app.Get("/", handlers.Welcome)
	app.Get("/health", health.Health)
	app.Get("/stats", stats.GetStats)
}
