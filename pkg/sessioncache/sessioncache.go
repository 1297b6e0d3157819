// Package sessioncache encodes an authenticated session snapshot into a
// short-lived signed cookie, so the session middleware can skip the
// database lookup on hot paths. The cookie is a convenience cache only:
// it expires quickly and the opaque session token in the database stays
// the source of truth.
package sessioncache

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid session cache token")
)

// Claims embed the user and session snapshot in the signed payload.
type Claims struct {
	jwt.RegisteredClaims
	User    domain.User    `json:"user"`
	Session domain.Session `json:"session"`
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "fold-backend",
	}
}

// TTL returns the cache lifetime, used as the cookie max age.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode signs a snapshot of the user and session. The cache expiry is the
// lesser of the codec TTL and the session's own expiry.
func (c *Codec) Encode(user *domain.User, session *domain.Session) (string, error) {
	now := time.Now()
	exp := now.Add(c.ttl)
	if session.ExpiresAt.Before(exp) {
		exp = session.ExpiresAt
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		User:    *user,
		Session: *session,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode validates the signed snapshot and returns the embedded user and
// session. Expired or tampered tokens return an error; callers fall back
// to the database lookup.
func (c *Codec) Decode(tokenString string) (*domain.User, *domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, nil, ErrInvalidToken
	}

	return &claims.User, &claims.Session, nil
}
