// Package apperrors holds the error taxonomy shared by repositories, services and handlers.
package apperrors

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// AppError carries the HTTP status a failure maps to.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Code so that WithMessage copies still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a custom message.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Status: e.Status, Code: e.Code, Message: message}
}

var (
	ErrUnauthorized     = &AppError{Status: fiber.StatusUnauthorized, Code: "unauthorized", Message: "unauthorized access"}
	ErrForbidden        = &AppError{Status: fiber.StatusForbidden, Code: "forbidden", Message: "forbidden access"}
	ErrBadRequest       = &AppError{Status: fiber.StatusBadRequest, Code: "bad_request", Message: "invalid request"}
	ErrNotFound         = &AppError{Status: fiber.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrConflict         = &AppError{Status: fiber.StatusConflict, Code: "conflict", Message: "resource already exists"}
	ErrUpdateFailed     = &AppError{Status: fiber.StatusInternalServerError, Code: "update_failed", Message: "update did not modify any document"}
	ErrInternal         = &AppError{Status: fiber.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
	ErrStoreUnavailable = &AppError{Status: fiber.StatusInternalServerError, Code: "store_unavailable", Message: "database unavailable"}
)

// From unwraps err into an *AppError, falling back to ErrInternal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &AppError{Status: fiberErr.Code, Code: "http_error", Message: fiberErr.Message}
	}
	return ErrInternal
}

// Respond writes err as the {success, message} JSON body with its mapped status.
func Respond(c *fiber.Ctx, err error) error {
	appErr := From(err)
	if appErr.Status >= fiber.StatusInternalServerError {
		log.Printf("🔥 %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(appErr.Status).JSON(fiber.Map{
		"success": false,
		"message": appErr.Message,
	})
}

// FiberErrorHandler renders errors returned from handlers and middleware.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	return Respond(c, err)
}
