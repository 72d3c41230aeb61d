package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(app *fiber.App, tutors *handlers.TutorHandler, bookings *handlers.BookingHandler, guards Guards) {
	app.Get("/find-tutors", tutors.ListTutors)
	app.Get("/find-tutors/:category", tutors.ListByCategory)

	app.Post("/tutors", guards.write(tutors.CreateTutor)...)
	app.Get("/tutors/:id", tutors.GetTutor)
	app.Patch("/tutors/:id", guards.write(tutors.UpdateTutor)...)
	app.Delete("/tutors/:id", guards.write(tutors.DeleteTutor)...)
	app.Patch("/tutors/:id/review", guards.write(bookings.SubmitReview)...)
}
