package handlers

import (
	"strings"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/anjiri1684/tutor_hunt/repository"
	"github.com/anjiri1684/tutor_hunt/services"
	"github.com/gofiber/fiber/v2"
)

type TutorHandler struct {
	store    repository.Store
	listener services.ChangeListener
	timeout  time.Duration
}

func NewTutorHandler(store repository.Store, listener services.ChangeListener, timeout time.Duration) *TutorHandler {
	return &TutorHandler{store: store, listener: listener, timeout: timeout}
}

type CreateTutorRequest struct {
	Email       string  `json:"email" validate:"omitempty,email"`
	Name        string  `json:"name"`
	Language    string  `json:"language" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// ListTutors serves GET /find-tutors?email=&language=&page=&limit=.
func (h *TutorHandler) ListTutors(c *fiber.Ctx) error {
	filter := models.TutorFilter{
		OwnerEmail: strings.TrimSpace(c.Query("email")),
		Language:   strings.TrimSpace(c.Query("language")),
	}
	page := c.QueryInt("page", repository.DefaultPage)
	limit := c.QueryInt("limit", repository.DefaultPageSize)

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	result, err := h.store.Tutors().List(ctx, filter, page, limit)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(result)
}

func (h *TutorHandler) ListByCategory(c *fiber.Ctx) error {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	tutors, err := h.store.Tutors().ListByCategory(ctx, c.Params("category"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(tutors)
}

func (h *TutorHandler) GetTutor(c *fiber.Ctx) error {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	tutor, err := h.store.Tutors().GetByID(ctx, c.Params("id"))
	if err != nil {
		return apperrors.Respond(c, notFound(err, "tutor not found"))
	}
	return c.JSON(tutor)
}

// CreateTutor lists a new tutor; the owner defaults to the caller. A review
// count in the body is ignored: the stored tutor always starts at zero reviews
// and only SubmitReview moves it, so the fetched tutor differs from the raw
// payload in that field.
func (h *TutorHandler) CreateTutor(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	var req CreateTutorRequest
	if err := parseBody(c, &req); err != nil {
		return apperrors.Respond(c, err)
	}

	tutor := models.Tutor{
		Email:       req.Email,
		Name:        req.Name,
		Language:    req.Language,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
	}
	if tutor.Email == "" {
		tutor.Email = caller.Email
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	if err := h.store.Tutors().Create(ctx, &tutor); err != nil {
		return apperrors.Respond(c, err)
	}
	h.changed(c)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"insertedId": tutor.ID,
		"tutor":      tutor,
	})
}

// UpdateTutor patches image, language, price and description only.
func (h *TutorHandler) UpdateTutor(c *fiber.Ctx) error {
	var update models.TutorUpdate
	if err := parseBody(c, &update); err != nil {
		return apperrors.Respond(c, err)
	}
	if update.IsEmpty() {
		return apperrors.Respond(c, apperrors.ErrBadRequest.WithMessage("nothing to update"))
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	tutor, err := h.store.Tutors().Update(ctx, c.Params("id"), update)
	if err != nil {
		return apperrors.Respond(c, notFound(err, "tutor not found"))
	}
	h.changed(c)

	return c.JSON(fiber.Map{
		"success":  true,
		"modified": true,
		"tutor":    tutor,
	})
}

func (h *TutorHandler) DeleteTutor(c *fiber.Ctx) error {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	if err := h.store.Tutors().Delete(ctx, c.Params("id")); err != nil {
		return apperrors.Respond(c, notFound(err, "tutor not found"))
	}
	h.changed(c)

	return c.JSON(fiber.Map{"success": true, "deleted": true})
}

func (h *TutorHandler) changed(c *fiber.Ctx) {
	if h.listener != nil {
		h.listener.Changed(c.UserContext())
	}
}

func notFound(err error, message string) error {
	if apperrors.From(err) == apperrors.ErrNotFound {
		return apperrors.ErrNotFound.WithMessage(message)
	}
	return err
}
