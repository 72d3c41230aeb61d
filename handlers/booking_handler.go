package handlers

import (
	"encoding/json"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/anjiri1684/tutor_hunt/services"
	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	bookings *services.BookingService
	timeout  time.Duration
}

func NewBookingHandler(bookings *services.BookingService, timeout time.Duration) *BookingHandler {
	return &BookingHandler{bookings: bookings, timeout: timeout}
}

// CreateBooking serves POST /booked-tutors.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return apperrors.Respond(c, apperrors.ErrBadRequest.WithMessage("cannot parse JSON"))
	}

	tutorID, ok := optionalString(body["tutorId"])
	if !ok {
		return apperrors.Respond(c, apperrors.ErrBadRequest.WithMessage("tutorId must be a string"))
	}
	userEmail, ok := optionalString(body["userEmail"])
	if !ok {
		return apperrors.Respond(c, apperrors.ErrBadRequest.WithMessage("userEmail must be a string"))
	}

	// Anything the server does not own is stored with the booking as sent.
	details := models.BookingDetails(body).Extra()

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	booking, err := h.bookings.CreateBooking(ctx, caller, services.CreateBookingInput{
		TutorID:   tutorID,
		UserEmail: userEmail,
		Details:   details,
	})
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"insertedId": booking.ID,
		"booking":    booking,
	})
}

// ListBookings serves GET /booked-tutors?email=, restricted to the caller's own email.
func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	bookings, err := h.bookings.ListBookings(ctx, caller, c.Query("email"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(bookings)
}

// SubmitReview serves PATCH /tutors/:id/review?email=.
func (h *BookingHandler) SubmitReview(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	if err := h.bookings.SubmitReview(ctx, caller, c.Params("id"), c.Query("email")); err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"modified": true,
		"message":  "review submitted",
	})
}

func optionalString(v interface{}) (string, bool) {
	if v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}
