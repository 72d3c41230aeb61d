// Package routes mounts the handlers on the fiber app.
package routes

import (
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/gofiber/fiber/v2"
)

// Guards are attached per route, not per group: fiber runs group middleware
// for every path under the prefix, public ones included.
type Guards struct {
	Protected fiber.Handler
	Limit     fiber.Handler
}

// write is the chain for authenticated writes.
func (g Guards) write(handler fiber.Handler) []fiber.Handler {
	chain := []fiber.Handler{g.Protected}
	if g.Limit != nil {
		chain = append(chain, g.Limit)
	}
	return append(chain, handler)
}

type Handlers struct {
	Health   *handlers.HealthHandler
	Stats    *handlers.StatsHandler
	Auth     *handlers.AuthHandler
	Tutors   *handlers.TutorHandler
	Bookings *handlers.BookingHandler
	Uploads  *handlers.UploadHandler
	Live     *handlers.LiveHandler
}

// Register mounts every route; Live may be nil.
func Register(app *fiber.App, h Handlers, guards Guards) {
	PublicRoutes(app, h.Health, h.Stats)
	AuthRoutes(app, h.Auth, guards)
	TutorRoutes(app, h.Tutors, h.Bookings, guards)
	BookingRoutes(app, h.Bookings, guards)
	UploadRoutes(app, h.Uploads, guards)
	if h.Live != nil {
		LiveRoutes(app, h.Live)
	}
}
