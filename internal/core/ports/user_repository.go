package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create persists a new user. A uniqueness violation on email or
	// phone_number is reported as a *domain.ValidationError naming the field.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error)
	// SetEmailVerified sets email_verified_at only while it is still unset.
	// It reports whether this call performed the transition; a user that was
	// already verified yields (false, nil).
	SetEmailVerified(ctx context.Context, id string, at time.Time) (bool, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	// Delete removes a user. A missing user yields domain.ErrUserNotFound.
	Delete(ctx context.Context, id string) error
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
	UpdatedAt   time.Time
}
