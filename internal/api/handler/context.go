package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/api/middleware"
	"github.com/99minutos/auth-system/internal/core/domain"
)

// ctxIdentity returns the principal injected by the Auth middleware. A
// missing identity means the route was wired without it.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return domain.Identity{}, domain.ErrTokenNotFound
	}
	return id, nil
}

// bind decodes the request body and runs the registered validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
