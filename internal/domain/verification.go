package domain

import (
	"time"

	"github.com/google/uuid"
)

// Verification purposes, encoded into the identifier column as
// "<purpose>:<email>".
const (
	VerificationEmail         = "email-verification"
	VerificationPasswordReset = "password-reset"
)

// Verification is a short-lived token record for email verification and
// password reset flows. Value holds a hash of the token, never the token
// itself.
type Verification struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Identifier string    `json:"identifier" db:"identifier"`
	Value      string    `json:"-" db:"value"`
	ExpiresAt  time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the verification token is past its expiry.
func (v *Verification) Expired() bool {
	return time.Now().After(v.ExpiresAt)
}
