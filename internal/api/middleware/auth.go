package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

const (
	identityKey = "identity"
	tokenKey    = "raw_token"
)

// Auth validates the bearer session token and injects the caller's identity
// and raw token into the echo context. Failures are returned as domain errors
// for the HTTP error handler to map.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := BearerToken(c)
			if err != nil {
				return err
			}

			claims, err := tokens.ValidateFor(c.Request().Context(), raw, domain.PurposeSession)
			if err != nil {
				return err
			}

			c.Set(identityKey, claims.Identity())
			c.Set(tokenKey, raw)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if header == "" {
		return "", domain.ErrTokenNotFound
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("%w: malformed authorization header", domain.ErrTokenInvalid)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrTokenNotFound
	}
	return token, nil
}

// IdentityFrom returns the identity set by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}

// TokenFrom returns the raw bearer token set by Auth.
func TokenFrom(c echo.Context) (string, bool) {
	raw, ok := c.Get(tokenKey).(string)
	return raw, ok && raw != ""
}
