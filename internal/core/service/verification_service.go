package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

const defaultVerificationTTL = 24 * time.Hour

// VerificationConfig controls verification tokens and the link mailed out.
type VerificationConfig struct {
	TTL time.Duration
	// LinkBaseURL, when set, gets ?token=<value> appended to build the link.
	LinkBaseURL string
}

// VerificationService drives the email verification state machine:
// unverified -> (pending while a token is outstanding) -> verified.
type VerificationService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	mailer ports.Mailer
	cfg    VerificationConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewVerificationService(repo ports.UserRepository, tokens ports.TokenService, mailer ports.Mailer, cfg VerificationConfig, logger zerolog.Logger) *VerificationService {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultVerificationTTL
	}
	return &VerificationService{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// RequestVerification issues a verification token for the caller and hands it
// to the mailer. Mail failures are logged, not returned.
func (s *VerificationService) RequestVerification(ctx context.Context, identity domain.Identity) (string, error) {
	user, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		return "", fmt.Errorf("request verification: %w", err)
	}
	if user.HasVerifiedEmail() {
		return "", domain.ErrAlreadyVerified
	}

	token, err := s.tokens.Issue(ctx, domain.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, domain.PurposeEmailVerification, s.cfg.TTL)
	if err != nil {
		return "", fmt.Errorf("request verification: %w", err)
	}

	msg := domain.VerificationMessage{
		UserID:    user.ID,
		To:        user.Email,
		Name:      user.Name,
		Token:     token.Value,
		Link:      s.link(token.Value),
		ExpiresAt: token.ExpiresAt,
	}
	if err := s.mailer.SendVerification(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("verification mail not dispatched")
	}

	s.logger.Info().Str("user_id", user.ID).Str("jti", token.ID).Msg("verification requested")
	return user.Email, nil
}

// Verify consumes a verification token. Verifying an address that is already
// confirmed succeeds with AlreadyVerified set.
func (s *VerificationService) Verify(ctx context.Context, rawToken string) (*ports.VerifyResult, error) {
	claims, err := s.tokens.ValidateFor(ctx, rawToken, domain.PurposeEmailVerification)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			return nil, domain.ErrVerificationExpired
		case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenNotFound):
			return nil, fmt.Errorf("%w: %v", domain.ErrVerificationInvalid, err)
		default:
			return nil, fmt.Errorf("verify email: %w", err)
		}
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return nil, fmt.Errorf("%w: email changed since the token was issued", domain.ErrVerificationInvalid)
	}

	result := &ports.VerifyResult{UserID: user.ID, Email: user.Email}
	if user.HasVerifiedEmail() {
		result.AlreadyVerified = true
		return result, nil
	}

	changed, err := s.repo.SetEmailVerified(ctx, user.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}
	result.AlreadyVerified = !changed

	if changed {
		s.logger.Info().Str("user_id", user.ID).Msg("email verified")
	}
	return result, nil
}

func (s *VerificationService) link(token string) string {
	if s.cfg.LinkBaseURL == "" {
		return ""
	}
	u, err := url.Parse(s.cfg.LinkBaseURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("base", s.cfg.LinkBaseURL).Msg("invalid verification link base")
		return ""
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
