package email

import "context"

// Service defines the outbound mail surface of the application.
type Service interface {
	// SendVerificationEmail sends an email verification link to the user
	SendVerificationEmail(ctx context.Context, to, name, token string) error

	// SendPasswordResetEmail sends a password reset link to the user
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error

	// SendPasswordChangedEmail sends a notification when password is changed
	SendPasswordChangedEmail(ctx context.Context, to, name string) error
}

// Config holds transport configuration.
type Config struct {
	APIKey          string
	FromName        string
	FromEmail       string
	VerificationURL string
	ResetURL        string
}
