package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	uploadHandler *UploadHandler,
	healthHandler *HealthHandler,
	docsHandler *DocsHandler,
	sessionMiddleware fiber.Handler,
	requireAuth fiber.Handler,
	rateLimit fiber.Handler,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"name":    "fold-backend",
			"message": "Fold API is running",
		})
	})

	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// Docs (public)
	app.Get("/openapi.json", docsHandler.OpenAPI)
	app.Get("/docs", docsHandler.Docs)
	app.Get("/test-login", docsHandler.TestLogin)

	api := app.Group("/api", sessionMiddleware)

	// Auth routes (public, rate limited)
	auth := api.Group("/auth", rateLimit)
	auth.Post("/sign-up/email", authHandler.SignUp)
	auth.Post("/sign-in/email", authHandler.SignIn)
	auth.Post("/sign-in/social", authHandler.SignInSocial)
	auth.Get("/callback/google", authHandler.GoogleCallback)
	auth.Post("/sign-out", authHandler.SignOut)
	auth.Get("/get-session", authHandler.GetSession)
	auth.Get("/verify-email", authHandler.VerifyEmail)
	auth.Post("/forget-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// User routes (protected)
	user := api.Group("/user", requireAuth)
	user.Get("/me", userHandler.GetMe)
	user.Patch("/me", userHandler.UpdateMe)
	user.Delete("/me", userHandler.DeleteMe)
	user.Post("/change-password", userHandler.ChangePassword)
	user.Get("/sessions", userHandler.ListSessions)
	user.Post("/revoke-sessions", userHandler.RevokeSessions)

	// Upload routes (protected)
	upload := api.Group("/upload", requireAuth)
	upload.Post("/", uploadHandler.Upload)
	upload.Post("/multiple", uploadHandler.UploadMultiple)
	upload.Post("/avatar", uploadHandler.UploadAvatar)
	upload.Get("/list/all", uploadHandler.ListFiles)
	upload.Get("/:fileId", uploadHandler.GetFile)
	upload.Delete("/:fileId", uploadHandler.DeleteFile)

	// Unknown routes get the uniform JSON body
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Not Found",
			"message": "Route not found",
		})
	})
}
