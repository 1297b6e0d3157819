package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/pkg/sessioncache"
)

// Locals keys populated by the session middleware.
const (
	LocalsUser    = "user"
	LocalsSession = "session"
	LocalsToken   = "session_token"
)

// SessionResolver maps a raw session token to its user and session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, *domain.Session, error)
}

// Session resolves the caller's session from the session cookie or a
// Bearer token and attaches it to the request. It never rejects: requests
// without a valid session simply continue unauthenticated, and route
// guards decide whether that matters.
//
// Cookie-based requests carrying a signed session-data cookie skip the
// database lookup while the snapshot is fresh.
func Session(resolver SessionResolver, codec *sessioncache.Codec, cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, fromCookie := extractToken(c, cfg.SessionCookie)
		if token == "" {
			return c.Next()
		}

		if fromCookie && codec != nil {
			if cached := c.Cookies(cfg.CacheCookie); cached != "" {
				user, session, err := codec.Decode(cached)
				if err == nil && !session.Expired() {
					c.Locals(LocalsUser, user)
					c.Locals(LocalsSession, session)
					c.Locals(LocalsToken, token)
					return c.Next()
				}
			}
		}

		user, session, err := resolver.Resolve(c.Context(), token)
		if err != nil {
			// Invalid or expired token: continue unauthenticated
			return c.Next()
		}

		c.Locals(LocalsUser, user)
		c.Locals(LocalsSession, session)
		c.Locals(LocalsToken, token)

		if fromCookie && codec != nil {
			if cached, err := codec.Encode(user, session); err == nil {
				c.Cookie(&fiber.Cookie{
					Name:     cfg.CacheCookie,
					Value:    cached,
					MaxAge:   int(codec.TTL().Seconds()),
					HTTPOnly: true,
					Secure:   cfg.SecureCookies,
					SameSite: "Lax",
					Path:     "/",
				})
			} else {
				log.Printf("[SESSION] Failed to encode session cache: %v", err)
			}
		}

		return c.Next()
	}
}

// RequireAuth rejects requests that the session middleware left
// unauthenticated.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals(LocalsUser).(*domain.User); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unauthorized",
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}

// AuthUser returns the authenticated user attached by the session
// middleware, or nil.
func AuthUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(LocalsUser).(*domain.User)
	return user
}

// AuthSession returns the resolved session attached by the session
// middleware, or nil.
func AuthSession(c *fiber.Ctx) *domain.Session {
	session, _ := c.Locals(LocalsSession).(*domain.Session)
	return session
}

// AuthToken returns the raw session token of the current request, or "".
func AuthToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalsToken).(string)
	return token
}

// extractToken reads the session token from the cookie or, failing that,
// the Authorization header. The second return reports the cookie source.
func extractToken(c *fiber.Ctx, cookieName string) (string, bool) {
	if token := c.Cookies(cookieName); token != "" {
		return token, true
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], false
}
