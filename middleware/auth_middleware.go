package middleware

import (
	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/auth"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenKey    = "user"
	identityKey = "identity"
)

// Protected verifies the session cookie and stores the caller's identity in Locals.
func Protected(tokens *auth.TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:        tokens.KeyFunc,
		Claims:         &auth.Claims{},
		TokenLookup:    "cookie:" + auth.CookieName,
		ContextKey:     tokenKey,
		SuccessHandler: storeIdentity,
		ErrorHandler:   jwtError,
	})
}

func storeIdentity(c *fiber.Ctx) error {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok {
		return apperrors.Respond(c, apperrors.ErrUnauthorized)
	}
	claims, _ := token.Claims.(*auth.Claims)
	identity, err := auth.IdentityFromClaims(claims)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// Missing, malformed and expired tokens are all reported as 401.
func jwtError(c *fiber.Ctx, err error) error {
	return apperrors.Respond(c, apperrors.ErrUnauthorized)
}

// CurrentIdentity returns the identity stored by Protected.
func CurrentIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}
