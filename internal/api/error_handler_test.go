package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if jerr := json.Unmarshal(rec.Body.Bytes(), &resp); jerr != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), jerr)
	}
	return rec, resp
}

func TestErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("refresh: %w", domain.ErrTokenExpired), http.StatusUnauthorized, "token_expired"},
		{fmt.Errorf("%w: bad signature", domain.ErrTokenInvalid), http.StatusUnauthorized, "token_invalid"},
		{domain.ErrTokenNotFound, http.StatusUnauthorized, "token_not_found"},
		{domain.ErrAlreadyVerified, http.StatusConflict, "already_verified"},
		{fmt.Errorf("verify email: %w", domain.ErrUserNotFound), http.StatusNotFound, "user_not_found"},
		{domain.ErrVerificationExpired, http.StatusGone, "verification_expired"},
		{domain.ErrVerificationInvalid, http.StatusBadRequest, "verification_invalid"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrSigning, http.StatusInternalServerError, "internal_error"},
		{errors.New("mongo: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		rec, resp := runErrorHandler(t, tc.err)
		if rec.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		if resp.Error != tc.kind {
			t.Errorf("%v: expected kind %q, got %q", tc.err, tc.kind, resp.Error)
		}
		if resp.Message == "" {
			t.Errorf("%v: expected a message", tc.err)
		}
	}
}

func TestErrorHandler_ValidationFields(t *testing.T) {
	err := fmt.Errorf("register: %w", domain.NewValidationError("email", "has already been taken"))
	rec, resp := runErrorHandler(t, err)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp.Fields["email"] != "has already been taken" {
		t.Fatalf("expected field errors in envelope, got %v", resp.Fields)
	}
}

func TestErrorHandler_DoesNotLeakInternalErrors(t *testing.T) {
	_, resp := runErrorHandler(t, errors.New("secret dsn mongodb://root:pw@db"))
	if resp.Message != "internal server error" {
		t.Fatalf("expected generic message, got %q", resp.Message)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, resp := runErrorHandler(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))
	if rec.Code != http.StatusNotFound || resp.Error != "not_found" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}
