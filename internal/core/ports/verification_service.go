package ports

import (
	"context"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// VerifyResult reports the outcome of a verification attempt. AlreadyVerified
// is set when the address had been confirmed before this call.
type VerifyResult struct {
	UserID          string
	Email           string
	AlreadyVerified bool
}

type VerificationService interface {
	// RequestVerification issues a verification token for the caller and hands
	// it to the mailer. It returns the destination address.
	RequestVerification(ctx context.Context, identity domain.Identity) (string, error)
	Verify(ctx context.Context, rawToken string) (*VerifyResult, error)
}

// Mailer delivers verification messages. From the core's point of view
// delivery is fire-and-forget.
type Mailer interface {
	SendVerification(ctx context.Context, msg domain.VerificationMessage) error
}
