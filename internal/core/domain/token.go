package domain

import "time"

// TokenPurpose scopes what a token may be used for.
type TokenPurpose string

const (
	PurposeSession           TokenPurpose = "session"
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// TokenTypeBearer is reported to clients alongside every issued session token.
const TokenTypeBearer = "bearer"

func (p TokenPurpose) Valid() bool {
	switch p {
	case PurposeSession, PurposeEmailVerification:
		return true
	}
	return false
}

// TokenSubject is the user-derived data embedded in a token at issue time.
type TokenSubject struct {
	UserID string
	Email  string
	Role   string
}

// Token is an issued, signed bearer token. It is never mutated after issue;
// refreshing produces a new Token.
type Token struct {
	Value     string
	ID        string
	Subject   string
	Purpose   TokenPurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime relative to now, floored at zero.
func (t *Token) ExpiresIn(now time.Time) time.Duration {
	d := t.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	ID        string
	UserID    string
	Email     string
	Role      string
	Purpose   TokenPurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity converts session claims into the request principal.
func (c *TokenClaims) Identity() Identity {
	return Identity{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt,
	}
}

// VerificationMessage is handed to the mail transport when a user asks for
// an email verification link.
type VerificationMessage struct {
	UserID    string    `json:"user_id"`
	To        string    `json:"to"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	Link      string    `json:"link,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
