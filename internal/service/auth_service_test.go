package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

func signUpFixture(t *testing.T, svc *AuthService) *AuthResult {
	t.Helper()
	result, err := svc.SignUp(context.Background(), SignUpRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "first-program",
	}, SessionMeta{IPAddress: "127.0.0.1", UserAgent: "test"})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	return result
}

func TestSignUpIssuesSession(t *testing.T) {
	svc, _, sessions, accounts, _ := newTestAuthService(nil)

	result := signUpFixture(t, svc)

	if result.Token == "" {
		t.Error("sign up should return a raw session token")
	}
	if result.User.Email != "ada@example.com" {
		t.Errorf("user email = %q", result.User.Email)
	}
	if sessions.count() != 1 {
		t.Errorf("session count = %d, want 1", sessions.count())
	}

	// Credential account stored with a hash, never the raw password
	account, err := accounts.GetByUserAndProvider(context.Background(), result.User.ID, domain.ProviderCredential)
	if err != nil {
		t.Fatalf("credential account missing: %v", err)
	}
	if account.PasswordHash == nil || *account.PasswordHash == "first-program" {
		t.Error("password must be stored hashed")
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(nil)
	signUpFixture(t, svc)

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Name:     "Imposter",
		Email:    "ada@example.com",
		Password: "something-else",
	}, SessionMeta{})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("error = %v, want ErrEmailTaken", err)
	}
}

func TestSignInVerifiesPassword(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(nil)
	signUpFixture(t, svc)

	result, err := svc.SignIn(context.Background(), SignInRequest{
		Email:    "ada@example.com",
		Password: "first-program",
	}, SessionMeta{})
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.Token == "" {
		t.Error("sign in should return a raw session token")
	}

	_, err = svc.SignIn(context.Background(), SignInRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	}, SessionMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want ErrInvalidCredentials", err)
	}

	_, err = svc.SignIn(context.Background(), SignInRequest{
		Email:    "nobody@example.com",
		Password: "first-program",
	}, SessionMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: error = %v, want ErrInvalidCredentials", err)
	}
}

func TestResolveReturnsUserAndSession(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	user, session, err := svc.Resolve(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if user.ID != result.User.ID {
		t.Errorf("resolved user = %s, want %s", user.ID, result.User.ID)
	}
	if session.ID != result.Session.ID {
		t.Errorf("resolved session = %s, want %s", session.ID, result.Session.ID)
	}

	if _, _, err := svc.Resolve(context.Background(), "bogus-token"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("bogus token: error = %v, want ErrSessionNotFound", err)
	}
}

func TestResolveDeletesExpiredSessionLazily(t *testing.T) {
	svc, _, sessions, _, _ := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	// Force the stored session past its expiry
	if err := sessions.Refresh(context.Background(), result.Session.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("failed to backdate session: %v", err)
	}

	if _, _, err := svc.Resolve(context.Background(), result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("error = %v, want ErrSessionNotFound", err)
	}
	if sessions.count() != 0 {
		t.Errorf("expired session should be deleted, %d remain", sessions.count())
	}
}

func TestResolveSlidingRefresh(t *testing.T) {
	svc, _, sessions, _, _ := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	// Age the session past the refresh threshold but not past expiry
	sessions.mu.Lock()
	stored := sessions.sessions[result.Session.ID]
	stored.UpdatedAt = time.Now().Add(-48 * time.Hour)
	oldExpiry := stored.ExpiresAt
	sessions.mu.Unlock()

	_, session, err := svc.Resolve(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !session.ExpiresAt.After(oldExpiry) {
		t.Error("an aged session should get a sliding expiry extension")
	}
}

func TestSignOutDeletesSession(t *testing.T) {
	svc, _, sessions, _, _ := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	if err := svc.SignOut(context.Background(), result.Token); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if sessions.count() != 0 {
		t.Errorf("session count = %d, want 0", sessions.count())
	}

	// Signing out twice is not an error
	if err := svc.SignOut(context.Background(), result.Token); err != nil {
		t.Errorf("repeat SignOut returned error: %v", err)
	}
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	mail := &recordingEmail{}
	svc, _, sessions, _, _ := newTestAuthService(mail)
	result := signUpFixture(t, svc)

	// A second device signs in
	other, err := svc.SignIn(context.Background(), SignInRequest{
		Email:    "ada@example.com",
		Password: "first-program",
	}, SessionMeta{})
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	err = svc.ChangePassword(context.Background(), result.User.ID, result.Session.ID, "first-program", "second-program")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	// Only the changing session survives
	if sessions.count() != 1 {
		t.Errorf("session count = %d, want 1", sessions.count())
	}
	if _, _, err := svc.Resolve(context.Background(), other.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Error("the other device's session should be revoked")
	}
	if _, _, err := svc.Resolve(context.Background(), result.Token); err != nil {
		t.Errorf("the changing session should survive: %v", err)
	}

	// Old password no longer works, new one does
	if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "ada@example.com", Password: "first-program"}, SessionMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password should be rejected after change")
	}
	if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "ada@example.com", Password: "second-program"}, SessionMeta{}); err != nil {
		t.Errorf("new password should work: %v", err)
	}

	if len(mail.changeNotices) != 1 {
		t.Errorf("change notices sent = %d, want 1", len(mail.changeNotices))
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	err := svc.ChangePassword(context.Background(), result.User.ID, result.Session.ID, "wrong", "second-program")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestEmailVerificationFlow(t *testing.T) {
	mail := &recordingEmail{}
	svc, users, _, _, _ := newTestAuthService(mail)
	result := signUpFixture(t, svc)

	if len(mail.verifications) != 1 {
		t.Fatalf("verification emails sent = %d, want 1", len(mail.verifications))
	}

	if err := svc.VerifyEmail(context.Background(), mail.lastVerifToken); err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}

	user, err := users.GetByID(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if !user.EmailVerified {
		t.Error("email should be marked verified")
	}

	// Token is single-use
	if err := svc.VerifyEmail(context.Background(), mail.lastVerifToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused token: error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	mail := &recordingEmail{}
	svc, _, sessions, _, _ := newTestAuthService(mail)
	signUpFixture(t, svc)

	if err := svc.ForgotPassword(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	if len(mail.resets) != 1 {
		t.Fatalf("reset emails sent = %d, want 1", len(mail.resets))
	}

	if err := svc.ResetPassword(context.Background(), mail.lastResetToken, "reset-program"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	// Every session is revoked after a reset
	if sessions.count() != 0 {
		t.Errorf("session count = %d, want 0", sessions.count())
	}

	if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "ada@example.com", Password: "reset-program"}, SessionMeta{}); err != nil {
		t.Errorf("new password should work after reset: %v", err)
	}

	// The token cannot be replayed
	if err := svc.ResetPassword(context.Background(), mail.lastResetToken, "again"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused token: error = %v, want ErrInvalidToken", err)
	}
}

func TestForgotPasswordHidesUnknownAddresses(t *testing.T) {
	mail := &recordingEmail{}
	svc, _, _, _, _ := newTestAuthService(mail)

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Errorf("unknown address should succeed silently, got %v", err)
	}
	if len(mail.resets) != 0 {
		t.Errorf("no email should be sent for unknown addresses, sent %d", len(mail.resets))
	}
}

func TestSignInWithOAuthCreatesUser(t *testing.T) {
	svc, _, _, accounts, _ := newTestAuthService(nil)

	info := &OAuthUserInfo{
		Provider:      "google",
		Subject:       "google-sub-1",
		Email:         "grace@example.com",
		Name:          "Grace Hopper",
		Picture:       "https://example.com/grace.png",
		EmailVerified: true,
	}
	tokens := &OAuthTokens{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600}

	result, err := svc.SignInWithOAuth(context.Background(), info, tokens, SessionMeta{})
	if err != nil {
		t.Fatalf("SignInWithOAuth returned error: %v", err)
	}

	if result.User.Email != "grace@example.com" || !result.User.EmailVerified {
		t.Errorf("user = %+v", result.User)
	}
	if result.User.Image == nil || *result.User.Image != info.Picture {
		t.Error("profile picture should be taken from the provider")
	}

	account, err := accounts.GetByProviderAccount(context.Background(), "google", "google-sub-1")
	if err != nil {
		t.Fatalf("provider account missing: %v", err)
	}
	if account.UserID != result.User.ID {
		t.Error("account should link to the created user")
	}
}

func TestSignInWithOAuthLinksExistingUserByEmail(t *testing.T) {
	svc, users, _, _, _ := newTestAuthService(nil)
	existing := signUpFixture(t, svc)

	info := &OAuthUserInfo{
		Provider:      "google",
		Subject:       "google-sub-2",
		Email:         "ada@example.com",
		Name:          "Ada L",
		EmailVerified: true,
	}

	result, err := svc.SignInWithOAuth(context.Background(), info, &OAuthTokens{AccessToken: "at"}, SessionMeta{})
	if err != nil {
		t.Fatalf("SignInWithOAuth returned error: %v", err)
	}
	if result.User.ID != existing.User.ID {
		t.Errorf("should link to existing user %s, got %s", existing.User.ID, result.User.ID)
	}

	// No duplicate user was created
	count := 0
	users.mu.Lock()
	count = len(users.users)
	users.mu.Unlock()
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}
}

func TestSignInWithOAuthRefreshesTokens(t *testing.T) {
	svc, _, _, accounts, _ := newTestAuthService(nil)

	info := &OAuthUserInfo{Provider: "google", Subject: "sub-3", Email: "x@example.com", Name: "X", EmailVerified: true}
	if _, err := svc.SignInWithOAuth(context.Background(), info, &OAuthTokens{AccessToken: "old"}, SessionMeta{}); err != nil {
		t.Fatalf("first sign-in: %v", err)
	}
	if _, err := svc.SignInWithOAuth(context.Background(), info, &OAuthTokens{AccessToken: "new"}, SessionMeta{}); err != nil {
		t.Fatalf("second sign-in: %v", err)
	}

	account, err := accounts.GetByProviderAccount(context.Background(), "google", "sub-3")
	if err != nil {
		t.Fatalf("provider account missing: %v", err)
	}
	if account.AccessToken == nil || *account.AccessToken != "new" {
		t.Error("repeat sign-in should refresh the stored access token")
	}
}

func TestRevokeOtherSessions(t *testing.T) {
	svc, _, sessions, _, _ := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	for i := 0; i < 3; i++ {
		if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "ada@example.com", Password: "first-program"}, SessionMeta{}); err != nil {
			t.Fatalf("SignIn returned error: %v", err)
		}
	}
	if sessions.count() != 4 {
		t.Fatalf("session count = %d, want 4", sessions.count())
	}

	if err := svc.RevokeOtherSessions(context.Background(), result.User.ID, result.Session.ID); err != nil {
		t.Fatalf("RevokeOtherSessions returned error: %v", err)
	}
	if sessions.count() != 1 {
		t.Errorf("session count = %d, want 1", sessions.count())
	}

	listed, err := svc.ListSessions(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != result.Session.ID {
		t.Errorf("surviving session should be the current one, got %v", listed)
	}
}

func TestIdentifierEmail(t *testing.T) {
	address, ok := identifierEmail("email-verification:ada@example.com", domain.VerificationEmail)
	if !ok || address != "ada@example.com" {
		t.Errorf("got (%q, %v)", address, ok)
	}

	if _, ok := identifierEmail("password-reset:ada@example.com", domain.VerificationEmail); ok {
		t.Error("purpose mismatch should not parse")
	}
	if _, ok := identifierEmail("email-verification:", domain.VerificationEmail); ok {
		t.Error("empty address should not parse")
	}
}

func TestHashTokenIsDeterministicAndOpaque(t *testing.T) {
	token, err := generateToken(32)
	if err != nil {
		t.Fatalf("generateToken returned error: %v", err)
	}

	if hashToken(token) != hashToken(token) {
		t.Error("hashToken must be deterministic")
	}
	if hashToken(token) == token {
		t.Error("stored value must not equal the raw token")
	}
	if len(hashToken(token)) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hashToken(token)))
	}

	other, _ := generateToken(32)
	if other == token {
		t.Error("two generated tokens should differ")
	}
}

func TestPurgeExpiredRemovesStaleRows(t *testing.T) {
	svc, _, sessions, _, verifications := newTestAuthService(nil)
	result := signUpFixture(t, svc)

	// Second session, backdated past its expiry
	stale, err := svc.SignIn(context.Background(), SignInRequest{
		Email:    "ada@example.com",
		Password: "first-program",
	}, SessionMeta{})
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if err := sessions.Refresh(context.Background(), stale.Session.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("failed to backdate session: %v", err)
	}

	// One live and one expired verification record
	now := time.Now()
	for _, v := range []*domain.Verification{
		{
			ID:         uuid.New(),
			Identifier: domain.VerificationEmail + ":ada@example.com",
			Value:      "live-hash",
			ExpiresAt:  now.Add(time.Hour),
			CreatedAt:  now,
		},
		{
			ID:         uuid.New(),
			Identifier: domain.VerificationPasswordReset + ":ada@example.com",
			Value:      "stale-hash",
			ExpiresAt:  now.Add(-time.Hour),
			CreatedAt:  now.Add(-2 * time.Hour),
		},
	} {
		if err := verifications.Create(context.Background(), v); err != nil {
			t.Fatalf("failed to seed verification: %v", err)
		}
	}

	if err := svc.PurgeExpired(context.Background()); err != nil {
		t.Fatalf("PurgeExpired returned error: %v", err)
	}

	if sessions.count() != 1 {
		t.Errorf("session count = %d, want only the live session", sessions.count())
	}
	if _, _, err := svc.Resolve(context.Background(), result.Token); err != nil {
		t.Errorf("live session should survive the sweep: %v", err)
	}
	if verifications.count() != 1 {
		t.Errorf("verification count = %d, want only the live record", verifications.count())
	}
	if _, err := verifications.Consume(context.Background(), "live-hash"); err != nil {
		t.Errorf("live verification should survive the sweep: %v", err)
	}
}
