package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

const defaultSessionTTL = time.Hour

// tokenClaims is the JWT payload. The registered claims carry sub, iat, exp
// and jti; purpose scopes what the token may be used for.
type tokenClaims struct {
	Purpose domain.TokenPurpose `json:"purpose"`
	Email   string              `json:"email,omitempty"`
	Role    string              `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens. Revocation is
// backed by a Denylist keyed on the token id; with a nil denylist tokens are
// stateless and Invalidate only relies on the client discarding them.
type TokenService struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	denylist   ports.Denylist
	now        func() time.Time
	log        zerolog.Logger
}

// TokenServiceOption customizes a TokenService.
type TokenServiceOption func(*TokenService)

// WithClock overrides the time source. Used by tests to mint expired tokens.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIssuer sets the iss claim and requires it on validation.
func WithIssuer(issuer string) TokenServiceOption {
	return func(s *TokenService) {
		s.issuer = issuer
	}
}

// NewTokenService fails with domain.ErrSigning when the secret is empty;
// callers treat that as a fatal startup error.
func NewTokenService(secret string, sessionTTL time.Duration, denylist ports.Denylist, log zerolog.Logger, opts ...TokenServiceOption) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: signing key is empty", domain.ErrSigning)
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}

	s := &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		denylist:   denylist,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Issue signs a new token for subject. A non-positive ttl falls back to the
// session TTL.
func (s *TokenService) Issue(_ context.Context, subject domain.TokenSubject, purpose domain.TokenPurpose, ttl time.Duration) (*domain.Token, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("issue token: unknown purpose %q", purpose)
	}
	if subject.UserID == "" {
		return nil, errors.New("issue token: empty subject")
	}
	if ttl <= 0 {
		ttl = s.sessionTTL
	}

	now := s.clock()
	return s.sign(subject, purpose, now, now.Add(ttl))
}

// Validate verifies signature, expiry and revocation. A good signature past
// its exp is always ErrTokenExpired; anything else wrong is ErrTokenInvalid.
func (s *TokenService) Validate(ctx context.Context, raw string) (*domain.TokenClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrTokenNotFound
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	tc := &tokenClaims{}
	if _, err := jwt.ParseWithClaims(raw, tc, s.keyFunc, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	if !tc.Purpose.Valid() || tc.Subject == "" || tc.ID == "" {
		return nil, fmt.Errorf("%w: malformed claims", domain.ErrTokenInvalid)
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, tc.ID)
		if err != nil {
			return nil, fmt.Errorf("validate token: denylist lookup: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token has been revoked", domain.ErrTokenInvalid)
		}
	}

	return toDomainClaims(tc), nil
}

// ValidateFor is Validate plus a purpose check.
func (s *TokenService) ValidateFor(ctx context.Context, raw string, purpose domain.TokenPurpose) (*domain.TokenClaims, error) {
	claims, err := s.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: expected %s token, got %s", domain.ErrTokenInvalid, purpose, claims.Purpose)
	}
	return claims, nil
}

// Refresh exchanges a valid session token for a new one. The new expiry is
// never earlier than the old one. The old jti is claimed on the denylist
// before signing, so each session token refreshes at most once.
func (s *TokenService) Refresh(ctx context.Context, raw string) (*domain.Token, error) {
	old, err := s.ValidateFor(ctx, raw, domain.PurposeSession)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	claimed, err := s.revoke(ctx, old)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("refresh token: %w: already refreshed or revoked", domain.ErrTokenInvalid)
	}

	now := s.clock()
	exp := now.Add(s.sessionTTL)
	if exp.Before(old.ExpiresAt) {
		exp = old.ExpiresAt
	}

	next, err := s.sign(domain.TokenSubject{UserID: old.UserID, Email: old.Email, Role: old.Role}, domain.PurposeSession, now, exp)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	s.log.Debug().Str("user_id", old.UserID).Str("old_jti", old.ID).Str("jti", next.ID).Msg("session refreshed")
	return next, nil
}

// Invalidate revokes raw for the rest of its lifetime. An already expired
// token needs no revocation.
func (s *TokenService) Invalidate(ctx context.Context, raw string) error {
	claims, err := s.Validate(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil
		}
		return fmt.Errorf("invalidate token: %w", err)
	}
	// A concurrent logout of the same token is fine; either call revokes it.
	if _, err := s.revoke(ctx, claims); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	return nil
}

// revoke reports whether this call claimed the jti. Without a denylist, or
// for a token already at its expiry, there is nothing to contend for and the
// claim always succeeds.
func (s *TokenService) revoke(ctx context.Context, claims *domain.TokenClaims) (bool, error) {
	if s.denylist == nil {
		return true, nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return true, nil
	}
	added, err := s.denylist.Revoke(ctx, claims.ID, ttl)
	if err != nil {
		return false, fmt.Errorf("revoke %s: %w", claims.ID, err)
	}
	return added, nil
}

func (s *TokenService) sign(subject domain.TokenSubject, purpose domain.TokenPurpose, iat, exp time.Time) (*domain.Token, error) {
	id := uuid.NewString()
	claims := &tokenClaims{
		Purpose: purpose,
		Email:   subject.Email,
		Role:    subject.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			Subject:   subject.UserID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	return &domain.Token{
		Value:     signed,
		ID:        id,
		Subject:   subject.UserID,
		Purpose:   purpose,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}

// clock returns now truncated to the second, the resolution of JWT dates.
func (s *TokenService) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func toDomainClaims(tc *tokenClaims) *domain.TokenClaims {
	out := &domain.TokenClaims{
		ID:      tc.ID,
		UserID:  tc.Subject,
		Email:   tc.Email,
		Role:    tc.Role,
		Purpose: tc.Purpose,
	}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.Time.UTC()
	}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time.UTC()
	}
	return out
}
