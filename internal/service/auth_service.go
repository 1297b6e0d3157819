package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
	"github.com/hyperingenious/fold-backend/pkg/email"
	"github.com/hyperingenious/fold-backend/pkg/hash"
)

// Custom errors
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found or expired")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrNoCredentialAccount = errors.New("account has no password sign-in")
)

const (
	sessionTokenLength      = 32
	verificationTokenExpiry = 24 * time.Hour
	passwordResetExpiry     = time.Hour
)

type AuthService struct {
	users         repository.UserRepository
	sessions      repository.SessionRepository
	accounts      repository.AccountRepository
	verifications repository.VerificationRepository
	email         email.Service
	cfg           *config.Config
}

// SessionMeta carries per-request client metadata recorded on new sessions.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by every operation that issues a session. Token is
// the raw session token; it is shown once and only its hash is stored.
type AuthResult struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	accounts repository.AccountRepository,
	verifications repository.VerificationRepository,
	emailService email.Service,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		accounts:      accounts,
		verifications: verifications,
		email:         emailService,
		cfg:           cfg,
	}
}

// SignUp registers a new email/password user and signs them in.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest, meta SessionMeta) (*AuthResult, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hash.Password(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.New(),
		AccountID:    user.ID.String(),
		ProviderID:   domain.ProviderCredential,
		UserID:       user.ID,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// Roll back the user row so the email is not burned
		_ = s.users.Delete(ctx, user.ID)
		return nil, err
	}

	session, token, err := s.issueSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	if err := s.RequestEmailVerification(ctx, user); err != nil {
		log.Printf("[AUTH] Failed to send verification email to %s: %v", user.Email, err)
	}

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// SignIn authenticates an email/password user and issues a session.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest, meta SessionMeta) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	account, err := s.accounts.GetByUserAndProvider(ctx, user.ID, domain.ProviderCredential)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := hash.Verify(req.Password, *account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	session, token, err := s.issueSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// SignOut deletes the session identified by the raw token. A token that
// matches no session is treated as already signed out.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	err := s.sessions.DeleteByTokenHash(ctx, hashToken(token))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// Resolve maps a raw session token to its user and session. Expired
// sessions are deleted lazily; sessions past the refresh age get a sliding
// expiry extension.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	session, err := s.sessions.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}

	if session.Expired() {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}

	if time.Since(session.UpdatedAt) > s.cfg.Auth.SessionRefreshAge {
		expiresAt := time.Now().Add(s.cfg.Auth.SessionExpiry)
		if err := s.sessions.Refresh(ctx, session.ID, expiresAt); err != nil {
			log.Printf("[AUTH] Failed to refresh session %s: %v", session.ID, err)
		} else {
			session.ExpiresAt = expiresAt
			session.UpdatedAt = time.Now()
		}
	}

	return user, session, nil
}

// ChangePassword verifies the current password, rotates the credential
// account's hash, and revokes every session except the one making the
// change.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentSessionID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	account, err := s.accounts.GetByUserAndProvider(ctx, userID, domain.ProviderCredential)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoCredentialAccount
		}
		return err
	}
	if account.PasswordHash == nil {
		return ErrNoCredentialAccount
	}

	valid, err := hash.Verify(currentPassword, *account.PasswordHash)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := hash.Password(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, newHash); err != nil {
		return err
	}

	if err := s.sessions.DeleteByUserIDExcept(ctx, userID, currentSessionID); err != nil {
		return err
	}

	if s.email != nil {
		if err := s.email.SendPasswordChangedEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("[AUTH] Failed to send password changed email to %s: %v", user.Email, err)
		}
	}

	return nil
}

// ListSessions returns the user's unexpired sessions, newest first.
func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	return s.sessions.ListByUserID(ctx, userID)
}

// RevokeOtherSessions deletes every session of the user except current.
func (s *AuthService) RevokeOtherSessions(ctx context.Context, userID, current uuid.UUID) error {
	return s.sessions.DeleteByUserIDExcept(ctx, userID, current)
}

// PurgeExpired deletes expired sessions and verification tokens. Resolve
// already drops expired sessions lazily; the periodic sweep catches rows
// whose tokens never come back.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	if err := s.sessions.DeleteExpired(ctx); err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	if err := s.verifications.DeleteExpired(ctx); err != nil {
		return fmt.Errorf("failed to purge expired verifications: %w", err)
	}
	return nil
}

// RequestEmailVerification issues a fresh verification token and mails it.
// Previously issued tokens for the same address are invalidated.
func (s *AuthService) RequestEmailVerification(ctx context.Context, user *domain.User) error {
	if s.email == nil || user.EmailVerified {
		return nil
	}

	token, err := s.createVerification(ctx, domain.VerificationEmail, user.Email, verificationTokenExpiry)
	if err != nil {
		return err
	}

	return s.email.SendVerificationEmail(ctx, user.Email, user.Name, token)
}

// VerifyEmail redeems a verification token and marks the address verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	verification, err := s.verifications.Consume(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	address, ok := identifierEmail(verification.Identifier, domain.VerificationEmail)
	if !ok {
		return ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.users.SetEmailVerified(ctx, user.ID)
}

// ForgotPassword issues a password reset token. Unknown addresses succeed
// silently so the endpoint cannot be used for user enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, address string) error {
	user, err := s.users.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if s.email == nil {
		return nil
	}

	token, err := s.createVerification(ctx, domain.VerificationPasswordReset, user.Email, passwordResetExpiry)
	if err != nil {
		return err
	}

	return s.email.SendPasswordResetEmail(ctx, user.Email, user.Name, token)
}

// ResetPassword redeems a reset token, replaces the credential password,
// and revokes every session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	verification, err := s.verifications.Consume(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	address, ok := identifierEmail(verification.Identifier, domain.VerificationPasswordReset)
	if !ok {
		return ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	newHash, err := hash.Password(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accounts.GetByUserAndProvider(ctx, user.ID, domain.ProviderCredential)
	switch {
	case err == nil:
		if err := s.accounts.UpdatePassword(ctx, account.ID, newHash); err != nil {
			return err
		}
	case errors.Is(err, repository.ErrNotFound):
		// OAuth-only user setting a password for the first time
		now := time.Now()
		account = &domain.Account{
			ID:           uuid.New(),
			AccountID:    user.ID.String(),
			ProviderID:   domain.ProviderCredential,
			UserID:       user.ID,
			PasswordHash: &newHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
	default:
		return err
	}

	return s.sessions.DeleteByUserIDExcept(ctx, user.ID, uuid.Nil)
}

// SignInWithOAuth links or creates the user for an OAuth identity and
// issues a session. Linking by verified email is trusted for Google.
func (s *AuthService) SignInWithOAuth(ctx context.Context, info *OAuthUserInfo, tokens *OAuthTokens, meta SessionMeta) (*AuthResult, error) {
	now := time.Now()

	account, err := s.accounts.GetByProviderAccount(ctx, info.Provider, info.Subject)
	switch {
	case err == nil:
		account.AccessToken = optional(tokens.AccessToken)
		account.RefreshToken = optional(tokens.RefreshToken)
		account.IDToken = optional(tokens.IDToken)
		account.Scope = optional(tokens.Scope)
		if tokens.ExpiresIn > 0 {
			expiry := now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
			account.AccessTokenExpiresAt = &expiry
		}
		if err := s.accounts.UpdateTokens(ctx, account); err != nil {
			return nil, err
		}

	case errors.Is(err, repository.ErrNotFound):
		user, lookupErr := s.users.GetByEmail(ctx, info.Email)
		if lookupErr != nil && !errors.Is(lookupErr, repository.ErrNotFound) {
			return nil, lookupErr
		}

		if user == nil || errors.Is(lookupErr, repository.ErrNotFound) {
			user = &domain.User{
				ID:            uuid.New(),
				Name:          info.Name,
				Email:         info.Email,
				EmailVerified: info.EmailVerified,
				Image:         optional(info.Picture),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.users.Create(ctx, user); err != nil {
				return nil, err
			}
		}

		account = &domain.Account{
			ID:           uuid.New(),
			AccountID:    info.Subject,
			ProviderID:   info.Provider,
			UserID:       user.ID,
			AccessToken:  optional(tokens.AccessToken),
			RefreshToken: optional(tokens.RefreshToken),
			IDToken:      optional(tokens.IDToken),
			Scope:        optional(tokens.Scope),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if tokens.ExpiresIn > 0 {
			expiry := now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
			account.AccessTokenExpiresAt = &expiry
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, err
		}

	default:
		return nil, err
	}

	user, err := s.users.GetByID(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	session, token, err := s.issueSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// issueSession mints a fresh opaque token and persists its hash.
func (s *AuthService) issueSession(ctx context.Context, userID uuid.UUID, meta SessionMeta) (*domain.Session, string, error) {
	token, err := generateToken(sessionTokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.cfg.Auth.SessionExpiry),
		CreatedAt: now,
		UpdatedAt: now,
		IPAddress: optional(meta.IPAddress),
		UserAgent: optional(meta.UserAgent),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	return session, token, nil
}

func (s *AuthService) createVerification(ctx context.Context, purpose, address string, expiry time.Duration) (string, error) {
	identifier := purpose + ":" + address
	if err := s.verifications.DeleteByIdentifier(ctx, identifier); err != nil {
		return "", err
	}

	token, err := generateToken(sessionTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}

	now := time.Now()
	verification := &domain.Verification{
		ID:         uuid.New(),
		Identifier: identifier,
		Value:      hashToken(token),
		ExpiresAt:  now.Add(expiry),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.verifications.Create(ctx, verification); err != nil {
		return "", err
	}

	return token, nil
}

// identifierEmail splits "<purpose>:<email>" and checks the purpose.
func identifierEmail(identifier, purpose string) (string, bool) {
	address, found := strings.CutPrefix(identifier, purpose+":")
	if !found || address == "" {
		return "", false
	}
	return address, true
}

// generateToken returns length random bytes, base64url-encoded.
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
