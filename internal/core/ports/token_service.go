package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// TokenValidator is the read side of the token service, used by middleware.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*domain.TokenClaims, error)
	ValidateFor(ctx context.Context, raw string, purpose domain.TokenPurpose) (*domain.TokenClaims, error)
}

// TokenService issues and manages bearer tokens.
type TokenService interface {
	TokenValidator
	Issue(ctx context.Context, subject domain.TokenSubject, purpose domain.TokenPurpose, ttl time.Duration) (*domain.Token, error)
	Refresh(ctx context.Context, raw string) (*domain.Token, error)
	Invalidate(ctx context.Context, raw string) error
	SessionTTL() time.Duration
}

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	// Revoke adds tokenID for ttl. It reports true only when this call added
	// the entry, so a caller can use it as a one-time claim on the token.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
