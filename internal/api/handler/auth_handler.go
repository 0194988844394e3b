package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/api/metrics"
	"github.com/99minutos/auth-system/internal/api/middleware"
	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	now         func() time.Time
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService, now: time.Now}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /api/v1/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		observe("register", err)
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	observe("register", err)
	if err != nil {
		return err
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(domain.PurposeSession)).Inc()

	return c.JSON(http.StatusCreated, registerResponse{
		Data:      res.User,
		Token:     res.Token.Value,
		TokenType: domain.TokenTypeBearer,
		ExpiresIn: h.expiresIn(res.Token),
	})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /api/v1/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		observe("login", err)
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	observe("login", err)
	if err != nil {
		return err
	}
	return h.tokenJSON(c, token)
}

// Refresh exchanges the bearer session token for a new one.
//
// @Summary      Refresh session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorBody
// @Router       /api/v1/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, err := middleware.BearerToken(c)
	if err != nil {
		observe("refresh", err)
		return err
	}

	token, err := h.authService.Refresh(c.Request().Context(), raw)
	observe("refresh", err)
	if err != nil {
		return err
	}
	return h.tokenJSON(c, token)
}

// Logout revokes the bearer session token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorBody
// @Router       /api/v1/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := middleware.TokenFrom(c)
	if !ok {
		observe("logout", domain.ErrTokenNotFound)
		return domain.ErrTokenNotFound
	}

	err := h.authService.Logout(c.Request().Context(), raw)
	observe("logout", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Successfully logged out"})
}

func (h *AuthHandler) tokenJSON(c echo.Context, token *domain.Token) error {
	metrics.TokensIssuedTotal.WithLabelValues(string(token.Purpose)).Inc()
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token.Value,
		TokenType:   domain.TokenTypeBearer,
		ExpiresIn:   h.expiresIn(token),
	})
}

func (h *AuthHandler) expiresIn(token *domain.Token) int64 {
	return int64(token.ExpiresIn(h.now()) / time.Second)
}

// observe records the outcome of an auth operation.
func observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	metrics.AuthOperationsTotal.WithLabelValues(operation, result).Inc()
}
