package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.AuthHandler, guards Guards) {
	if guards.Limit != nil {
		app.Post("/jwt", guards.Limit, h.IssueToken)
	} else {
		app.Post("/jwt", h.IssueToken)
	}
	app.Get("/logout", h.Logout)
}
