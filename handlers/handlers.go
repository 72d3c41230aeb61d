// Package handlers holds the fiber handlers of the TutorHunt API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/auth"
	"github.com/anjiri1684/tutor_hunt/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.ErrBadRequest.WithMessage(fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
	}
	return apperrors.ErrBadRequest
}

// parseBody decodes and validates the JSON body into out.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.ErrBadRequest.WithMessage("cannot parse JSON")
	}
	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

// storeContext bounds a store call by the request context and timeout.
func storeContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

func identity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return auth.Identity{}, apperrors.ErrUnauthorized
	}
	return id, nil
}
