package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Google   GoogleConfig
	Storage  StorageConfig
	Email    EmailConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	SessionExpiry     time.Duration
	SessionRefreshAge time.Duration
	SessionCookie     string
	CacheCookie       string
	CacheSecret       string
	CacheTTL          time.Duration
	SecureCookies     bool
	RateLimitWindow   time.Duration
	RateLimitMax      int
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type StorageConfig struct {
	Endpoint  string
	ProjectID string
	APIKey    string
	BucketID  string
}

type EmailConfig struct {
	Enabled         bool
	APIKey          string
	FromName        string
	FromEmail       string
	VerificationURL string
	ResetURL        string
}

type CORSConfig struct {
	FrontendURL string
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "fold"),
			Password: getEnv("DB_PASSWORD", "fold"),
			DBName:   getEnv("DB_NAME", "folddb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SessionExpiry:     getDurationEnv("AUTH_SESSION_EXPIRY", 7*24*time.Hour),
			SessionRefreshAge: getDurationEnv("AUTH_SESSION_REFRESH_AGE", 24*time.Hour),
			SessionCookie:     getEnv("AUTH_SESSION_COOKIE", "fold.session_token"),
			CacheCookie:       getEnv("AUTH_CACHE_COOKIE", "fold.session_data"),
			CacheSecret:       getEnv("AUTH_CACHE_SECRET", ""),
			CacheTTL:          getDurationEnv("AUTH_CACHE_TTL", 5*time.Minute),
			SecureCookies:     getBoolEnv("AUTH_SECURE_COOKIES", false),
			RateLimitWindow:   getDurationEnv("AUTH_RATE_LIMIT_WINDOW", time.Minute),
			RateLimitMax:      getIntEnv("AUTH_RATE_LIMIT_MAX", 100),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/callback/google"),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1"),
			ProjectID: getEnv("APPWRITE_PROJECT_ID", ""),
			APIKey:    getEnv("APPWRITE_API_KEY", ""),
			BucketID:  getEnv("APPWRITE_BUCKET_ID", ""),
		},
		Email: EmailConfig{
			Enabled:         getBoolEnv("EMAIL_ENABLED", false),
			APIKey:          getEnv("RESEND_API_KEY", ""),
			FromName:        getEnv("EMAIL_FROM_NAME", "Fold"),
			FromEmail:       getEnv("EMAIL_FROM_ADDRESS", ""),
			VerificationURL: getEnv("EMAIL_VERIFICATION_URL", "http://localhost:3001/verify-email"),
			ResetURL:        getEnv("EMAIL_RESET_URL", "http://localhost:3001/reset-password"),
		},
		CORS: CORSConfig{
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3001"),
		},
	}

	if cfg.Auth.CacheSecret == "" && cfg.Server.Environment != "development" {
		return nil, fmt.Errorf("AUTH_CACHE_SECRET is required outside development")
	}

	return cfg, nil
}

// Development reports whether the server runs in development mode. Error
// responses include full messages only in development.
func (c *Config) Development() bool {
	return c.Server.Environment == "development"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the connection string form used by the migration runner.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
