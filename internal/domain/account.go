package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifiers for account records.
const (
	ProviderCredential = "credential"
	ProviderGoogle     = "google"
)

// Account binds one credential or identity provider to a user. A credential
// account carries the password hash; an OAuth account carries provider
// tokens. Multiple accounts may link to the same user.
type Account struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	AccountID             string     `json:"accountId" db:"account_id"`
	ProviderID            string     `json:"providerId" db:"provider_id"`
	UserID                uuid.UUID  `json:"userId" db:"user_id"`
	AccessToken           *string    `json:"-" db:"access_token"`
	RefreshToken          *string    `json:"-" db:"refresh_token"`
	IDToken               *string    `json:"-" db:"id_token"`
	AccessTokenExpiresAt  *time.Time `json:"-" db:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"-" db:"refresh_token_expires_at"`
	Scope                 *string    `json:"scope,omitempty" db:"scope"`
	PasswordHash          *string    `json:"-" db:"password_hash"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}
