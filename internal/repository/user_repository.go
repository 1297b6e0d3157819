package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email address
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile applies the supplied profile fields and refreshes
	// updated_at, returning the updated row
	UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)

	// SetEmailVerified marks the user's email as verified
	SetEmailVerified(ctx context.Context, id uuid.UUID) error

	// Delete removes the user; sessions and accounts cascade
	Delete(ctx context.Context, id uuid.UUID) error
}
