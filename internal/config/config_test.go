package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, "development", cfg.Server.Environment)
	require.True(t, cfg.Development())

	require.Equal(t, 7*24*time.Hour, cfg.Auth.SessionExpiry)
	require.Equal(t, 24*time.Hour, cfg.Auth.SessionRefreshAge)
	require.Equal(t, "fold.session_token", cfg.Auth.SessionCookie)
	require.Equal(t, "fold.session_data", cfg.Auth.CacheCookie)
	require.False(t, cfg.Auth.SecureCookies)

	require.Equal(t, "https://cloud.appwrite.io/v1", cfg.Storage.Endpoint)
	require.False(t, cfg.Email.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("AUTH_SESSION_EXPIRY", "48h")
	t.Setenv("AUTH_RATE_LIMIT_MAX", "25")
	t.Setenv("AUTH_SECURE_COOKIES", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 48*time.Hour, cfg.Auth.SessionExpiry)
	require.Equal(t, 25, cfg.Auth.RateLimitMax)
	require.True(t, cfg.Auth.SecureCookies)
	require.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("AUTH_SESSION_EXPIRY", "not-a-duration")
	t.Setenv("AUTH_RATE_LIMIT_MAX", "lots")
	t.Setenv("AUTH_SECURE_COOKIES", "yes please")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 7*24*time.Hour, cfg.Auth.SessionExpiry)
	require.Equal(t, 100, cfg.Auth.RateLimitMax)
	require.False(t, cfg.Auth.SecureCookies)
}

func TestLoadRequiresCacheSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_CACHE_SECRET", "super-secret")
	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.Development())
}

func TestConnectionStrings(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.internal", Port: "5433",
		User: "fold", Password: "pw",
		DBName: "folddb", SSLMode: "require",
	}
	require.Equal(t,
		"host=db.internal port=5433 user=fold password=pw dbname=folddb sslmode=require",
		db.DSN())
	require.Equal(t,
		"postgres://fold:pw@db.internal:5433/folddb?sslmode=require",
		db.URL())

	redis := RedisConfig{Host: "cache.internal", Port: "6380"}
	require.Equal(t, "cache.internal:6380", redis.Addr())
}
