package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/service"
)

// AuthService is the slice of the auth service the HTTP layer uses.
// *service.AuthService satisfies it; tests substitute fakes.
type AuthService interface {
	SignUp(ctx context.Context, req service.SignUpRequest, meta service.SessionMeta) (*service.AuthResult, error)
	SignIn(ctx context.Context, req service.SignInRequest, meta service.SessionMeta) (*service.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	SignInWithOAuth(ctx context.Context, info *service.OAuthUserInfo, tokens *service.OAuthTokens, meta service.SessionMeta) (*service.AuthResult, error)
	ChangePassword(ctx context.Context, userID, currentSessionID uuid.UUID, currentPassword, newPassword string) error
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error)
	RevokeOtherSessions(ctx context.Context, userID, current uuid.UUID) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, address string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// UserService is the slice of the user service the HTTP layer uses.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req service.UpdateProfileRequest) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
