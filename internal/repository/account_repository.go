package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

type AccountRepository interface {
	// Create inserts a new account
	Create(ctx context.Context, account *domain.Account) error

	// GetByUserAndProvider retrieves a user's account for one provider
	GetByUserAndProvider(ctx context.Context, userID uuid.UUID, providerID string) (*domain.Account, error)

	// GetByProviderAccount retrieves an account by provider and the
	// provider-side account id
	GetByProviderAccount(ctx context.Context, providerID, accountID string) (*domain.Account, error)

	// UpdatePassword replaces the password hash of a credential account
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// UpdateTokens replaces the OAuth tokens of a provider account
	UpdateTokens(ctx context.Context, account *domain.Account) error
}
