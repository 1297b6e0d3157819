package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/handler/middleware"
	"github.com/hyperingenious/fold-backend/internal/service"
	"github.com/hyperingenious/fold-backend/pkg/validator"
)

type UserHandler struct {
	userService UserService
	authService AuthService
	validator   *validator.Validator
	cfg         *config.Config
}

func NewUserHandler(
	userService UserService,
	authService AuthService,
	v *validator.Validator,
	cfg *config.Config,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		validator:   v,
		cfg:         cfg,
	}
}

// GetMe returns the caller's profile
// GET /api/user/me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)

	profile, err := h.userService.GetProfile(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found", "")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    profile,
	})
}

// UpdateMe applies a partial profile update. The avatar field is
// nullable: sending `"avatar": null` clears it, omitting the key leaves
// it untouched.
// PATCH /api/user/me
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	var req service.UpdateProfileRequest
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &req.Name); err != nil || req.Name == nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body", "name must be a string")
		}
	}
	if raw, ok := fields["avatar"]; ok {
		req.AvatarSet = true
		if err := json.Unmarshal(raw, &req.Avatar); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body", "avatar must be a URL or null")
		}
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	profile, err := h.userService.UpdateProfile(c.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found", "")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    profile,
	})
}

// DeleteMe deletes the caller's account. Sessions and linked accounts
// cascade in the database.
// DELETE /api/user/me
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)

	if err := h.userService.DeleteAccount(c.Context(), user.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found", "")
		}
		return err
	}

	clearSessionCookies(c, h.cfg.Auth)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Account deleted",
	})
}

// ChangePassword rotates the caller's password and revokes every other
// session
// POST /api/user/change-password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)
	session := middleware.AuthSession(c)

	var req struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.validator.Validate(req); err != nil {
		return failValidation(c, err)
	}

	err := h.authService.ChangePassword(c.Context(), user.ID, session.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return fail(c, fiber.StatusBadRequest, "Password change failed", "current password is incorrect")
		case errors.Is(err, service.ErrNoCredentialAccount):
			return fail(c, fiber.StatusBadRequest, "Password change failed", err.Error())
		default:
			return err
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password changed",
	})
}

// ListSessions returns the caller's active sessions, flagging the one
// making the request
// GET /api/user/sessions
func (h *UserHandler) ListSessions(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)
	current := middleware.AuthSession(c)

	sessions, err := h.authService.ListSessions(c.Context(), user.ID)
	if err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, fiber.Map{
			"id":        s.ID,
			"createdAt": s.CreatedAt,
			"updatedAt": s.UpdatedAt,
			"expiresAt": s.ExpiresAt,
			"ipAddress": s.IPAddress,
			"userAgent": s.UserAgent,
			"current":   current != nil && s.ID == current.ID,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    items,
	})
}

// RevokeSessions deletes every session of the caller except the current
// one
// POST /api/user/revoke-sessions
func (h *UserHandler) RevokeSessions(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)
	session := middleware.AuthSession(c)

	if err := h.authService.RevokeOtherSessions(c.Context(), user.ID, session.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Other sessions revoked",
	})
}
