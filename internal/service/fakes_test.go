package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
	"github.com/hyperingenious/fold-backend/pkg/email"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.ImageSet {
		user.Image = update.Image
	}
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) SetEmailVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.TokenHash == tokenHash {
			copied := *session
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, session := range r.sessions {
		if session.UserID == userID && !session.Expired() {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Refresh(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	session.ExpiresAt = expiresAt
	session.UpdatedAt = time.Now()
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.TokenHash == tokenHash {
			delete(r.sessions, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memSessionRepo) DeleteByUserIDExcept(_ context.Context, userID, keep uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.UserID == userID && id != keep {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.Expired() {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *memAccountRepo) GetByUserAndProvider(_ context.Context, userID uuid.UUID, providerID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.UserID == userID && account.ProviderID == providerID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAccountRepo) GetByProviderAccount(_ context.Context, providerID, accountID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ProviderID == providerID && account.AccountID == accountID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAccountRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = &passwordHash
	account.UpdatedAt = time.Now()
	return nil
}

func (r *memAccountRepo) UpdateTokens(_ context.Context, updated *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[updated.ID]
	if !ok {
		return repository.ErrNotFound
	}
	account.AccessToken = updated.AccessToken
	account.RefreshToken = updated.RefreshToken
	account.IDToken = updated.IDToken
	account.Scope = updated.Scope
	account.AccessTokenExpiresAt = updated.AccessTokenExpiresAt
	account.UpdatedAt = time.Now()
	return nil
}

type memVerificationRepo struct {
	mu            sync.Mutex
	verifications map[uuid.UUID]*domain.Verification
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{verifications: make(map[uuid.UUID]*domain.Verification)}
}

func (r *memVerificationRepo) Create(_ context.Context, verification *domain.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *verification
	r.verifications[verification.ID] = &copied
	return nil
}

func (r *memVerificationRepo) Consume(_ context.Context, value string) (*domain.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, verification := range r.verifications {
		if verification.Value == value && !verification.Expired() {
			copied := *verification
			delete(r.verifications, id)
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memVerificationRepo) DeleteByIdentifier(_ context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, verification := range r.verifications {
		if verification.Identifier == identifier {
			delete(r.verifications, id)
		}
	}
	return nil
}

func (r *memVerificationRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, verification := range r.verifications {
		if verification.Expired() {
			delete(r.verifications, id)
		}
	}
	return nil
}

func (r *memVerificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.verifications)
}

// recordingEmail captures outbound mail instead of sending it.
type recordingEmail struct {
	mu             sync.Mutex
	verifications  []string
	resets         []string
	changeNotices  []string
	lastResetToken string
	lastVerifToken string
}

func (e *recordingEmail) SendVerificationEmail(_ context.Context, to, _ string, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.verifications = append(e.verifications, to)
	e.lastVerifToken = token
	return nil
}

func (e *recordingEmail) SendPasswordResetEmail(_ context.Context, to, _ string, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resets = append(e.resets, to)
	e.lastResetToken = token
	return nil
}

func (e *recordingEmail) SendPasswordChangedEmail(_ context.Context, to, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changeNotices = append(e.changeNotices, to)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			SessionExpiry:     7 * 24 * time.Hour,
			SessionRefreshAge: 24 * time.Hour,
			SessionCookie:     "fold.session_token",
			CacheCookie:       "fold.session_data",
			CacheTTL:          5 * time.Minute,
		},
	}
}

func newTestAuthService(mail *recordingEmail) (*AuthService, *memUserRepo, *memSessionRepo, *memAccountRepo, *memVerificationRepo) {
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	accounts := newMemAccountRepo()
	verifications := newMemVerificationRepo()

	var emailService email.Service
	if mail != nil {
		emailService = mail
	}

	svc := NewAuthService(users, sessions, accounts, verifications, emailService, testConfig())
	return svc, users, sessions, accounts, verifications
}
