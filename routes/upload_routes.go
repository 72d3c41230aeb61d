package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.UploadHandler, guards Guards) {
	app.Get("/uploads/signature", guards.Protected, h.GenerateUploadSignature)
}
