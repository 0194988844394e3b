package ports

import (
	"context"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name        string
	Email       string
	Role        string
	PhoneNumber string
	Password    string
}

// RegisterResult is the created account plus the session token issued for it.
type RegisterResult struct {
	User  *domain.User
	Token *domain.Token
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*domain.Token, error)
	Refresh(ctx context.Context, rawToken string) (*domain.Token, error)
	Logout(ctx context.Context, rawToken string) error
}
