package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendService implements Service using Resend.
type ResendService struct {
	client *resend.Client
	config Config
}

func NewResendService(config Config) (*ResendService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendService{
		client: resend.NewClient(config.APIKey),
		config: config,
	}, nil
}

func (s *ResendService) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	verificationURL := fmt.Sprintf("%s?token=%s", s.config.VerificationURL, token)

	return s.send(ctx, to, "Verify Your Email Address", verificationTemplate(name, verificationURL))
}

func (s *ResendService) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	resetURL := fmt.Sprintf("%s?token=%s", s.config.ResetURL, token)

	return s.send(ctx, to, "Reset Your Password", passwordResetTemplate(name, resetURL))
}

func (s *ResendService) SendPasswordChangedEmail(ctx context.Context, to, name string) error {
	return s.send(ctx, to, "Your Password Was Changed", passwordChangedTemplate(name))
}

func (s *ResendService) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("[EMAIL] Failed to send %q to %s: %v", subject, to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("[EMAIL] Sent %q to %s (ID: %s)", subject, to, sent.Id)
	return nil
}

var _ Service = (*ResendService)(nil)
