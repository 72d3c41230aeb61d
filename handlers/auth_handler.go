package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/auth"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	tokens     *auth.TokenService
	production bool
}

func NewAuthHandler(tokens *auth.TokenService, production bool) *AuthHandler {
	return &AuthHandler{tokens: tokens, production: production}
}

type SessionRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// sessionCookie carries the attributes shared by login and logout; browsers
// only drop a cookie when they match.
func (h *AuthHandler) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if h.production {
		cookie.Secure = true
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	return cookie
}

// IssueToken serves POST /jwt.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req SessionRequest
	if err := parseBody(c, &req); err != nil {
		return apperrors.Respond(c, err)
	}

	token, err := h.tokens.Issue(req.Email)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	c.Cookie(h.sessionCookie(token, time.Now().Add(auth.SessionExpiry)))
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"success": true})
}
