package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func LiveRoutes(app *fiber.App, h *handlers.LiveHandler) {
	app.Use("/ws", handlers.RequireUpgrade)
	app.Get("/ws/stats", websocket.New(h.ServeStats))
}
