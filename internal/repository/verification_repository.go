package repository

import (
	"context"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

type VerificationRepository interface {
	// Create inserts a new verification record
	Create(ctx context.Context, verification *domain.Verification) error

	// Consume retrieves an unexpired verification by its value hash and
	// deletes it so the token is single-use
	Consume(ctx context.Context, value string) (*domain.Verification, error)

	// DeleteByIdentifier removes all verifications for one identifier,
	// invalidating previously issued tokens
	DeleteByIdentifier(ctx context.Context, identifier string) error

	// DeleteExpired removes all expired verifications
	DeleteExpired(ctx context.Context) error
}
