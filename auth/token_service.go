// Package auth issues and verifies the signed session token carried in the
// "token" cookie.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/golang-jwt/jwt/v4"
)

const (
	CookieName    = "token"
	SessionExpiry = 10 * time.Hour
)

// Claims is the payload of a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	Email string
}

type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// Issue signs a session token for email, valid for SessionExpiry.
func (s *TokenService) Issue(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.ErrBadRequest.WithMessage("email is required")
	}

	now := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// KeyFunc rejects anything but HMAC-signed tokens.
func (s *TokenService) KeyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

// Verify checks signature and expiry and returns the embedded identity.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, apperrors.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.KeyFunc)
	if err != nil || !token.Valid {
		return Identity{}, apperrors.ErrUnauthorized
	}
	return IdentityFromClaims(claims)
}

func IdentityFromClaims(claims *Claims) (Identity, error) {
	if claims == nil || claims.Email == "" {
		return Identity{}, apperrors.ErrUnauthorized
	}
	return Identity{Email: claims.Email}, nil
}
