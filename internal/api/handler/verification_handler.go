package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/core/ports"
)

type VerificationHandler struct {
	service ports.VerificationService
}

func NewVerificationHandler(service ports.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// RequestVerification mails a verification link to the caller.
//
// @Summary      Request email verification
// @Tags         email
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  verificationResponse
// @Failure      401   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /email/request-verification [post]
func (h *VerificationHandler) RequestVerification(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	email, err := h.service.RequestVerification(c.Request().Context(), identity)
	observe("request_verification", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, verificationResponse{
		Success: true,
		Message: "Verification link sent to " + email,
	})
}

// Verify confirms an email address with a verification token, taken from the
// JSON body or the token query parameter.
//
// @Summary      Verify email address
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        body   body      verifyRequest  false  "Verification token"
// @Param        token  query     string         false  "Verification token"
// @Success      200    {object}  verificationResponse
// @Failure      400    {object}  errorBody
// @Failure      404    {object}  errorBody
// @Failure      410    {object}  errorBody
// @Router       /email/verify [post]
func (h *VerificationHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return err
		}
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = strings.TrimSpace(c.QueryParam("token"))
	}

	res, err := h.service.Verify(c.Request().Context(), token)
	observe("verify", err)
	if err != nil {
		return err
	}

	msg := "Email verified successfully"
	if res.AlreadyVerified {
		msg = "Email already verified"
	}
	return c.JSON(http.StatusOK, verificationResponse{
		Success:         true,
		Message:         msg,
		Email:           res.Email,
		AlreadyVerified: res.AlreadyVerified,
	})
}
