package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/hyperingenious/fold-backend/internal/config"
)

// CORSMiddleware allows the configured frontend plus the local dev
// origins, with credentials so session cookies flow.
func CORSMiddleware(cfg config.CORSConfig) fiber.Handler {
	origins := []string{
		cfg.FrontendURL,
		"http://localhost:3000",
		"http://localhost:8081",
	}

	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
	})
}
