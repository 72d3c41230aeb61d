package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/tutor_hunt/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(tokens *auth.TokenService) *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(tokens), func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(identity.Email)
	})
	return app
}

func TestProtected(t *testing.T) {
	tokens := auth.NewTokenService("test-secret")
	app := protectedApp(tokens)

	valid, err := tokens.Issue("ana@example.com")
	require.NoError(t, err)
	foreign, err := auth.NewTokenService("other").Issue("ana@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		status int
		body   string
	}{
		{"valid cookie", valid, fiber.StatusOK, "ana@example.com"},
		{"no cookie", "", fiber.StatusUnauthorized, ""},
		{"malformed", "abc", fiber.StatusUnauthorized, ""},
		{"wrong secret", foreign, fiber.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", auth.CookieName+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

func TestProtectedIgnoresAuthorizationHeader(t *testing.T) {
	tokens := auth.NewTokenService("test-secret")
	valid, err := tokens.Issue("ana@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	resp, err := protectedApp(tokens).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	app := fiber.New()
	app.Post("/write", limiter.Limit(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/write", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, statuses)
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}
