package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.BookingHandler, guards Guards) {
	app.Post("/booked-tutors", guards.write(h.CreateBooking)...)
	app.Get("/booked-tutors", guards.Protected, h.ListBookings)
}
