package ports

import (
	"context"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// UpdateProfileInput carries optional profile changes.
type UpdateProfileInput struct {
	Name        *string
	PhoneNumber *string
}

type UserService interface {
	Profile(ctx context.Context, identity domain.Identity) (*domain.User, error)
	Get(ctx context.Context, identity domain.Identity, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, identity domain.Identity, id string, input UpdateProfileInput) (*domain.User, error)
}
