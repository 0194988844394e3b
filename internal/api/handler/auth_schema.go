package handler

import "github.com/99minutos/auth-system/internal/core/domain"

// --- Request types ---

type registerRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Role            string `json:"role" validate:"required,oneof=user admin"`
	PhoneNumber     string `json:"phone_number" validate:"required,min=10,max=20"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"c_password" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,min=10,max=20"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// --- Response types ---

type registerResponse struct {
	Data      *domain.User `json:"data"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	Data *domain.User `json:"data"`
}

type verificationResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Email           string `json:"email,omitempty"`
	AlreadyVerified bool   `json:"already_verified,omitempty"`
}

// errorBody documents the error envelope for swagger.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
