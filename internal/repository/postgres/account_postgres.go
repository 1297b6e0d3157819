package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
)

type accountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, account_id, provider_id, user_id, access_token, refresh_token,
	id_token, access_token_expires_at, refresh_token_expires_at, scope,
	password_hash, created_at, updated_at`

// Create inserts a new account into the database
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, account_id, provider_id, user_id, access_token, refresh_token,
			id_token, access_token_expires_at, refresh_token_expires_at, scope,
			password_hash, created_at, updated_at
		) VALUES (
			:id, :account_id, :provider_id, :user_id, :access_token, :refresh_token,
			:id_token, :access_token_expires_at, :refresh_token_expires_at, :scope,
			:password_hash, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByUserAndProvider retrieves a user's account for a specific provider
func (r *accountRepository) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, providerID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND provider_id = $2`

	var account domain.Account
	err := r.db.GetContext(ctx, &account, query, userID, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account for provider %s: %w", providerID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by user and provider: %w", err)
	}

	return &account, nil
}

// GetByProviderAccount retrieves an account by provider and the
// provider-side account id
func (r *accountRepository) GetByProviderAccount(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE provider_id = $1 AND account_id = $2`

	var account domain.Account
	err := r.db.GetContext(ctx, &account, query, providerID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s/%s: %w", providerID, accountID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by provider account: %w", err)
	}

	return &account, nil
}

// UpdatePassword replaces the password hash of a credential account
func (r *accountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// UpdateTokens replaces the OAuth tokens of a provider account
func (r *accountRepository) UpdateTokens(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET access_token = :access_token,
			refresh_token = :refresh_token,
			id_token = :id_token,
			access_token_expires_at = :access_token_expires_at,
			refresh_token_expires_at = :refresh_token_expires_at,
			scope = :scope,
			updated_at = :updated_at
		WHERE id = :id`

	account.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		return fmt.Errorf("failed to update account tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", account.ID, repository.ErrNotFound)
	}

	return nil
}
