package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/internal/pkg/phone"
)

const (
	minPasswordLength = 6
	// bcrypt refuses longer inputs.
	maxPasswordLength = 72
)

// AuthConfig tunes hashing and input normalization.
type AuthConfig struct {
	BcryptCost  int
	PhoneRegion string
}

// AuthService implements registration, login and session lifecycle.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	cfg    AuthConfig
	logger zerolog.Logger
	now    func() time.Time

	// dummyHash is compared against on unknown emails so a miss costs the
	// same as a wrong password.
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, cfg AuthConfig, logger zerolog.Logger) *AuthService {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = phone.DefaultRegion
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}

	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	email := normalizeEmail(in.Email)

	ve := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "is required")
	}
	if email == "" {
		ve.Add("email", "is required")
	}
	if in.Role != domain.RoleUser && in.Role != domain.RoleAdmin {
		ve.Add("role", "must be one of: user admin")
	}
	switch {
	case len(in.Password) < minPasswordLength:
		ve.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	case len(in.Password) > maxPasswordLength:
		ve.Add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
	}
	phoneNumber, err := phone.Normalize(in.PhoneNumber, s.cfg.PhoneRegion)
	if err != nil {
		ve.Add("phone_number", "must be a valid phone number")
	}
	if !ve.Empty() {
		return nil, ve
	}

	if err := s.checkAvailable(ctx, email, phoneNumber); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  phoneNumber,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) {
			s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.Login(ctx, email, in.Password)
	if err != nil {
		s.rollback(ctx, created.ID)
		return nil, fmt.Errorf("register: sign in: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return &ports.RegisterResult{User: created, Token: token}, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Token, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, domain.ErrUnauthorized
	}

	return s.issueSession(ctx, user)
}

func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*domain.Token, error) {
	return s.tokens.Refresh(ctx, rawToken)
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	return s.tokens.Invalidate(ctx, rawToken)
}

// rollback removes a user created by a registration that could not finish,
// so the caller can retry with the same email and phone number.
func (s *AuthService) rollback(ctx context.Context, id string) {
	if err := s.repo.Delete(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to roll back registration")
	}
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.Token, error) {
	return s.tokens.Issue(ctx, domain.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, domain.PurposeSession, s.tokens.SessionTTL())
}

// checkAvailable reports every already-taken unique field at once. The store
// still enforces uniqueness on write; this only gives a complete error.
func (s *AuthService) checkAvailable(ctx context.Context, email, phoneNumber string) error {
	ve := &domain.ValidationError{}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		ve.Add("email", "has already been taken")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register: check email: %w", err)
	}

	if _, err := s.repo.FindByPhoneNumber(ctx, phoneNumber); err == nil {
		ve.Add("phone_number", "has already been taken")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register: check phone number: %w", err)
	}

	if !ve.Empty() {
		return ve
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
