package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/service"
	"github.com/hyperingenious/fold-backend/pkg/sessioncache"
	"github.com/hyperingenious/fold-backend/pkg/validator"
)

// fail writes the uniform error envelope.
func fail(c *fiber.Ctx, status int, errText, message string) error {
	body := fiber.Map{
		"success": false,
		"error":   errText,
	}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// failValidation writes a 400 with field-level details when the error is a
// validation error, and a plain 400 otherwise.
func failValidation(c *fiber.Ctx, err error) error {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Validation failed",
			"details": verr.Details,
		})
	}
	return fail(c, fiber.StatusBadRequest, "Validation failed", err.Error())
}

// sessionMeta captures client metadata recorded on freshly issued sessions.
func sessionMeta(c *fiber.Ctx) service.SessionMeta {
	return service.SessionMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

// setSessionCookies writes the opaque session token cookie plus, when a
// codec is configured, the signed session snapshot cookie.
func setSessionCookies(c *fiber.Ctx, cfg config.AuthConfig, codec *sessioncache.Codec, result *service.AuthResult) {
	maxAge := int(result.Session.ExpiresAt.Sub(result.Session.CreatedAt).Seconds())

	c.Cookie(&fiber.Cookie{
		Name:     cfg.SessionCookie,
		Value:    result.Token,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: "Lax",
		Path:     "/",
	})

	if codec == nil {
		return
	}
	if cached, err := codec.Encode(result.User, result.Session); err == nil {
		c.Cookie(&fiber.Cookie{
			Name:     cfg.CacheCookie,
			Value:    cached,
			MaxAge:   int(codec.TTL().Seconds()),
			HTTPOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: "Lax",
			Path:     "/",
		})
	}
}

// clearSessionCookies expires both session cookies.
func clearSessionCookies(c *fiber.Ctx, cfg config.AuthConfig) {
	for _, name := range []string{cfg.SessionCookie, cfg.CacheCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: "Lax",
			Path:     "/",
		})
	}
}
