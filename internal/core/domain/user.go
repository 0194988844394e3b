package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models a registered account. EmailVerifiedAt is nil until the
// address has been confirmed through a verification token.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	PhoneNumber     string     `json:"phone_number"`
	Role            string     `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasVerifiedEmail reports whether the user's email has been confirmed.
func (u *User) HasVerifiedEmail() bool {
	return u.EmailVerifiedAt != nil && !u.EmailVerifiedAt.IsZero()
}

// VerificationStatus is the persisted half of the verification state machine.
// The pending state is never stored: it only exists while an unexpired
// verification token is outstanding for an unverified user.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
)

func (u *User) VerificationStatus() VerificationStatus {
	if u.HasVerifiedEmail() {
		return VerificationVerified
	}
	return VerificationUnverified
}

// Identity is the authenticated principal resolved from a session token.
// It is passed explicitly into every operation that needs to know the caller.
type Identity struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
