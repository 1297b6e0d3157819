package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/database"
	"github.com/hyperingenious/fold-backend/internal/handler"
	"github.com/hyperingenious/fold-backend/internal/handler/middleware"
	"github.com/hyperingenious/fold-backend/internal/metrics"
	"github.com/hyperingenious/fold-backend/internal/repository/postgres"
	"github.com/hyperingenious/fold-backend/internal/service"
	"github.com/hyperingenious/fold-backend/pkg/appwrite"
	"github.com/hyperingenious/fold-backend/pkg/email"
	"github.com/hyperingenious/fold-backend/pkg/ratelimit"
	"github.com/hyperingenious/fold-backend/pkg/sessioncache"
	"github.com/hyperingenious/fold-backend/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()
	log.Println("✓ Database connection established")

	// Apply pending schema migrations
	if err := database.MigrateUp(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database schema up to date")

	// Initialize Redis client
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}()
	log.Println("✓ Redis connection established")

	// Initialize validator
	validate := validator.New()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	verificationRepo := postgres.NewVerificationRepository(db)

	// Initialize email service
	var emailService email.Service
	if cfg.Email.Enabled {
		emailService, err = email.NewResendService(email.Config{
			APIKey:          cfg.Email.APIKey,
			FromName:        cfg.Email.FromName,
			FromEmail:       cfg.Email.FromEmail,
			VerificationURL: cfg.Email.VerificationURL,
			ResetURL:        cfg.Email.ResetURL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize email service: %v", err)
			log.Println("Email functionality will be disabled")
			emailService = nil
		} else {
			log.Println("✓ Email service initialized (Resend)")
		}
	} else {
		log.Println("ℹ Email service disabled (set EMAIL_ENABLED=true to enable)")
	}

	// Session cache cookie codec
	var codec *sessioncache.Codec
	if cfg.Auth.CacheSecret != "" {
		codec = sessioncache.NewCodec(cfg.Auth.CacheSecret, cfg.Auth.CacheTTL)
		log.Println("✓ Session cookie cache enabled")
	} else {
		log.Println("ℹ Session cookie cache disabled (set AUTH_CACHE_SECRET to enable)")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, accountRepo, verificationRepo, emailService, cfg)
	userService := service.NewUserService(userRepo)
	googleProvider := service.NewGoogleProvider(cfg.Google)
	stateStore := service.NewOAuthStateStore(redisClient)

	// Storage client
	storageClient := appwrite.New(appwrite.Config{
		Endpoint:  cfg.Storage.Endpoint,
		ProjectID: cfg.Storage.ProjectID,
		APIKey:    cfg.Storage.APIKey,
		BucketID:  cfg.Storage.BucketID,
	})

	// Rate limiter for the auth routes
	limiter := ratelimit.New(redisClient, cfg.Auth.RateLimitWindow, cfg.Auth.RateLimitMax)

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, googleProvider, stateStore, codec, validate, cfg)
	userHandler := handler.NewUserHandler(userService, authService, validate, cfg)
	uploadHandler := handler.NewUploadHandler(storageClient, collector)
	healthHandler := handler.NewHealthHandler(db, redisClient)
	docsHandler := handler.NewDocsHandler()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Fold Backend v1.0",
		ErrorHandler: errorHandler(cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    64 * 1024 * 1024,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(collector.Middleware())
	app.Use(middleware.CORSMiddleware(cfg.CORS))

	app.Get("/metrics", metrics.Handler(registry))

	// Setup routes
	handler.SetupRoutes(
		app,
		authHandler,
		userHandler,
		uploadHandler,
		healthHandler,
		docsHandler,
		middleware.Session(authService, codec, cfg.Auth),
		middleware.RequireAuth(),
		middleware.RateLimitMiddleware(limiter),
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Periodic sweep of expired sessions and verification tokens. Resolve
	// deletes expired sessions lazily; this catches the rest.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := authService.PurgeExpired(sweepCtx); err != nil {
					log.Printf("[AUTH] Expired row sweep failed: %v", err)
				}
				cancel()
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server starting on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			log.Printf("❌ Server failed to start: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Error closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// errorHandler maps uncaught errors to the uniform JSON envelope. Message
// detail is included only in development.
func errorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		log.Printf("Error handling request [%s %s]: %v", c.Method(), c.Path(), err)

		body := fiber.Map{
			"success": false,
			"error":   "Internal Server Error",
		}
		if code != fiber.StatusInternalServerError {
			body["error"] = err.Error()
		} else if cfg.Development() {
			body["message"] = err.Error()
		}

		return c.Status(code).JSON(body)
	}
}
