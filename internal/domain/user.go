package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	Image         *string   `json:"avatar" db:"image"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// ProfileUpdate carries the writable profile fields. Only fields that were
// supplied in the request are applied; ImageSet distinguishes "clear the
// avatar" (Image == nil, ImageSet == true) from "leave it alone".
type ProfileUpdate struct {
	Name     *string
	Image    *string
	ImageSet bool
}
