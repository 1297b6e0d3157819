package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

type SessionRepository interface {
	// Create inserts a new session
	Create(ctx context.Context, session *domain.Session) error

	// GetByTokenHash retrieves a session by its token hash
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)

	// ListByUserID retrieves all unexpired sessions for a user
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error)

	// Refresh extends a session's expiry and refreshes updated_at
	Refresh(ctx context.Context, id uuid.UUID, expiresAt time.Time) error

	// Delete removes a session by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByTokenHash removes a session by its token hash
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByUserIDExcept removes all of a user's sessions except keep
	DeleteByUserIDExcept(ctx context.Context, userID, keep uuid.UUID) error

	// DeleteExpired removes all expired sessions
	DeleteExpired(ctx context.Context) error
}
