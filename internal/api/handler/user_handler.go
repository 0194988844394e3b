package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Profile returns the authenticated user.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorBody
// @Router       /api/v1/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.service.Profile(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Data: user})
}

// Show returns any user by id. Admin only.
//
// @Summary      Get user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Show(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Data: user})
}

// Update changes the name and/or phone number of a user.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User ID"
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /api/v1/user/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), identity, c.Param("id"), ports.UpdateProfileInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Data: user})
}
