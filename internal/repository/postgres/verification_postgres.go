package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
)

type verificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository creates a new PostgreSQL verification repository
func NewVerificationRepository(db *sqlx.DB) repository.VerificationRepository {
	return &verificationRepository{db: db}
}

// Create inserts a new verification record into the database
func (r *verificationRepository) Create(ctx context.Context, verification *domain.Verification) error {
	query := `
		INSERT INTO verifications (
			id, identifier, value, expires_at, created_at, updated_at
		) VALUES (
			:id, :identifier, :value, :expires_at, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, verification)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}

	return nil
}

// Consume retrieves an unexpired verification by its value hash and deletes
// it in the same statement, so a token can only be redeemed once.
func (r *verificationRepository) Consume(ctx context.Context, value string) (*domain.Verification, error) {
	query := `
		DELETE FROM verifications
		WHERE value = $1 AND expires_at > $2
		RETURNING id, identifier, value, expires_at, created_at, updated_at`

	var verification domain.Verification
	err := r.db.GetContext(ctx, &verification, query, value, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to consume verification: %w", err)
	}

	return &verification, nil
}

// DeleteByIdentifier removes all verifications for an identifier
func (r *verificationRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	query := `DELETE FROM verifications WHERE identifier = $1`

	_, err := r.db.ExecContext(ctx, query, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete verifications: %w", err)
	}

	return nil
}

// DeleteExpired removes all expired verifications from the database
func (r *verificationRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM verifications WHERE expires_at <= $1`

	_, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired verifications: %w", err)
	}

	return nil
}
