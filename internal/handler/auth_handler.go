package handler

import (
	"context"
	"errors"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/handler/middleware"
	"github.com/hyperingenious/fold-backend/internal/service"
	"github.com/hyperingenious/fold-backend/pkg/sessioncache"
	"github.com/hyperingenious/fold-backend/pkg/validator"
)

// OAuthProvider is the provider side of the authorization code flow.
type OAuthProvider interface {
	Enabled() bool
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*service.OAuthUserInfo, *service.OAuthTokens, error)
}

// StateStore issues and redeems single-use OAuth CSRF states.
type StateStore interface {
	Create(ctx context.Context, callbackURL string) (string, error)
	Consume(ctx context.Context, state string) (string, error)
}

type AuthHandler struct {
	authService AuthService
	google      OAuthProvider
	states      StateStore
	codec       *sessioncache.Codec
	validator   *validator.Validator
	cfg         *config.Config
}

func NewAuthHandler(
	authService AuthService,
	google OAuthProvider,
	states StateStore,
	codec *sessioncache.Codec,
	v *validator.Validator,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		google:      google,
		states:      states,
		codec:       codec,
		validator:   v,
		cfg:         cfg,
	}
}

// SignUp handles email/password registration
// POST /api/auth/sign-up/email
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req service.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	result, err := h.authService.SignUp(c.Context(), req, sessionMeta(c))
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return fail(c, fiber.StatusBadRequest, "Sign up failed", err.Error())
		}
		return err
	}

	setSessionCookies(c, h.cfg.Auth, h.codec, result)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  result.User,
			"token": result.Token,
		},
	})
}

// SignIn handles email/password login
// POST /api/auth/sign-in/email
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req service.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	result, err := h.authService.SignIn(c.Context(), req, sessionMeta(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return fail(c, fiber.StatusUnauthorized, "Sign in failed", err.Error())
		}
		return err
	}

	setSessionCookies(c, h.cfg.Auth, h.codec, result)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  result.User,
			"token": result.Token,
		},
	})
}

// SignOut deletes the caller's session and clears cookies
// POST /api/auth/sign-out
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if token := middleware.AuthToken(c); token != "" {
		if err := h.authService.SignOut(c.Context(), token); err != nil {
			return err
		}
	}

	clearSessionCookies(c, h.cfg.Auth)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Signed out",
	})
}

// GetSession returns the caller's session, or null data when anonymous
// GET /api/auth/get-session
func (h *AuthHandler) GetSession(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)
	session := middleware.AuthSession(c)
	if user == nil || session == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":    user,
			"session": session,
		},
	})
}

// SignInSocial starts the OAuth authorization code flow
// POST /api/auth/sign-in/social
func (h *AuthHandler) SignInSocial(c *fiber.Ctx) error {
	var req struct {
		Provider    string `json:"provider" validate:"required,oneof=google"`
		CallbackURL string `json:"callbackURL" validate:"omitempty,url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	if h.google == nil || !h.google.Enabled() {
		return fail(c, fiber.StatusBadRequest, "Provider not configured", "Google sign-in is not available")
	}

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = h.cfg.CORS.FrontendURL
	}

	state, err := h.states.Create(c.Context(), callbackURL)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"url":      h.google.LoginURL(state),
			"redirect": true,
		},
	})
}

// GoogleCallback completes the OAuth flow and redirects to the frontend
// GET /api/auth/callback/google
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		return fail(c, fiber.StatusBadRequest, "OAuth callback failed", "missing code or state")
	}

	callbackURL, err := h.states.Consume(c.Context(), state)
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) {
			return fail(c, fiber.StatusBadRequest, "OAuth callback failed", err.Error())
		}
		return err
	}

	info, tokens, err := h.google.Exchange(c.Context(), code)
	if err != nil {
		log.Printf("[AUTH] Google exchange failed: %v", err)
		return c.Redirect(errorRedirect(callbackURL, "oauth_exchange_failed"), fiber.StatusFound)
	}

	result, err := h.authService.SignInWithOAuth(c.Context(), info, tokens, sessionMeta(c))
	if err != nil {
		log.Printf("[AUTH] Google sign-in failed: %v", err)
		return c.Redirect(errorRedirect(callbackURL, "oauth_sign_in_failed"), fiber.StatusFound)
	}

	setSessionCookies(c, h.cfg.Auth, h.codec, result)

	return c.Redirect(callbackURL, fiber.StatusFound)
}

// VerifyEmail redeems an email verification token
// GET /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fail(c, fiber.StatusBadRequest, "Verification failed", "token is required")
	}

	if err := h.authService.VerifyEmail(c.Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrUserNotFound) {
			return fail(c, fiber.StatusBadRequest, "Verification failed", "invalid or expired token")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Email verified",
	})
}

// ForgotPassword issues a password reset email. Always succeeds so the
// endpoint cannot confirm which addresses exist.
// POST /api/auth/forget-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		log.Printf("[AUTH] Forgot password for %s failed: %v", req.Email, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "If the address exists, a reset email has been sent",
	})
}

// ResetPassword redeems a reset token and sets a new password
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	if err := h.authService.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrUserNotFound) {
			return fail(c, fiber.StatusBadRequest, "Reset failed", "invalid or expired token")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password has been reset",
	})
}

func errorRedirect(callbackURL, code string) string {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return callbackURL
	}
	q := parsed.Query()
	q.Set("error", code)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
