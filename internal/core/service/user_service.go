package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/internal/pkg/phone"
)

type UserService struct {
	repo        ports.UserRepository
	phoneRegion string
	logger      zerolog.Logger
	now         func() time.Time
}

func NewUserService(repo ports.UserRepository, phoneRegion string, logger zerolog.Logger) *UserService {
	if phoneRegion == "" {
		phoneRegion = phone.DefaultRegion
	}
	return &UserService{repo: repo, phoneRegion: phoneRegion, logger: logger, now: time.Now}
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// Get looks up any account. Only admins may read other users.
func (s *UserService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.User, error) {
	if !identity.IsAdmin() && identity.UserID != id {
		return nil, domain.ErrForbidden
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes name and/or phone number for the caller, or for any
// user when the caller is an admin.
func (s *UserService) UpdateProfile(ctx context.Context, identity domain.Identity, id string, in ports.UpdateProfileInput) (*domain.User, error) {
	if !identity.IsAdmin() && identity.UserID != id {
		return nil, domain.ErrForbidden
	}

	update := ports.ProfileUpdate{UpdatedAt: s.now().UTC()}
	ve := &domain.ValidationError{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			ve.Add("name", "is required")
		}
		update.Name = &name
	}

	if in.PhoneNumber != nil {
		normalized, err := phone.Normalize(*in.PhoneNumber, s.phoneRegion)
		if err != nil {
			ve.Add("phone_number", "must be a valid phone number")
		} else {
			owner, err := s.repo.FindByPhoneNumber(ctx, normalized)
			switch {
			case err == nil && owner.ID != id:
				ve.Add("phone_number", "has already been taken")
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return nil, fmt.Errorf("update profile: check phone number: %w", err)
			}
			update.PhoneNumber = &normalized
		}
	}

	if !ve.Empty() {
		return nil, ve
	}

	user, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info().Str("user_id", id).Str("actor", identity.UserID).Msg("profile updated")
	return user, nil
}
