package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/api/metrics"
	"github.com/99minutos/auth-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorMapping struct {
	status  int
	message string
}

// errorTable maps every domain error kind to its HTTP status and the message
// shown to clients. Kinds missing here are answered with 500.
var errorTable = map[domain.ErrorKind]errorMapping{
	domain.KindValidation:          {http.StatusUnprocessableEntity, "the given data was invalid"},
	domain.KindUnauthorized:        {http.StatusUnauthorized, "invalid credentials"},
	domain.KindTokenExpired:        {http.StatusUnauthorized, "token has expired"},
	domain.KindTokenInvalid:        {http.StatusUnauthorized, "token is invalid"},
	domain.KindTokenNotFound:       {http.StatusUnauthorized, "token not provided"},
	domain.KindAlreadyVerified:     {http.StatusConflict, "email address is already verified"},
	domain.KindUserNotFound:        {http.StatusNotFound, "user not found"},
	domain.KindVerificationExpired: {http.StatusGone, "verification link has expired"},
	domain.KindVerificationInvalid: {http.StatusBadRequest, "verification link is invalid"},
	domain.KindForbidden:           {http.StatusForbidden, "access forbidden"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors through errorTable.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<kind>", "message": "<text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		metrics.ErrorsTotal.WithLabelValues(resp.Error).Inc()

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{
			Error:   httpKind(he.Code),
			Message: fmt.Sprintf("%v", he.Message),
		}
	}

	kind := domain.KindOf(err)
	if m, ok := errorTable[kind]; ok {
		resp := errorResponse{Error: string(kind), Message: m.message}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			resp.Fields = ve.Fields
		}
		return m.status, resp
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("kind", string(kind)).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Error:   string(domain.KindInternal),
		Message: "internal server error",
	}
}

// httpKind derives a snake_case kind from an HTTP status for transport-level
// errors raised by echo itself.
func httpKind(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "http_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
