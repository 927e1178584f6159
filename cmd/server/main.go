package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/checker"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/config"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/database"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/logging"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/routes"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/session"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, cfg.AppEnv),
		dbLogHandler,
	)))

	// Sentry error tracking (must precede background workers)
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// System log retention
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Access token revocation
	var revoker session.Revoker = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		store, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			slog.Warn("redis unreachable, token revocation checks will fail open", "error", err)
		}
		cancel()
		defer store.Close()
		revoker = store
	}

	// AI provider
	provider, err := newProvider(cfg)
	if err != nil {
		slog.Error("AI provider setup failed", "provider", cfg.AIProvider, "error", err)
		os.Exit(1)
	}
	ai, err := analyzer.New(provider)
	if err != nil {
		slog.Error("analyzer setup failed", "error", err)
		os.Exit(1)
	}

	// Services
	accessService := services.NewAccessService(database.DB)
	settingsService := services.NewSettingsService(database.DB)
	telegram := notify.NewTelegramSender(settingsService, cfg.TelegramAPIURL, cfg.NotifyRatePerMin)
	authService := services.NewAuthService(database.DB, cfg, revoker)
	projectService := services.NewProjectService(database.DB, accessService)
	serviceManager := services.NewServiceManager(database.DB, accessService)
	logService := services.NewLogService(database.DB, accessService, ai, telegram)
	queryLogService := services.NewQueryLogService(database.DB, accessService, ai)
	ingestService := services.NewIngestService(logService, accessService, telegram)
	performanceService := services.NewPerformanceService(
		checker.NewProber(cfg.PerformanceCheckTimeout), settingsService, ai, telegram)

	// Service checks
	serviceChecker := checker.New(database.DB, checker.NewProber(cfg.ServiceCheckTimeout), ai, telegram)
	autoChecker := checker.NewAutoChecker(database.DB, serviceChecker, cfg.AutoCheckSchedule)
	if cfg.AutoCheckEnabled {
		if err := autoChecker.Start(); err != nil {
			slog.Error("auto checker failed to start", "error", err)
			os.Exit(1)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, revoker, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Health:      handlers.NewHealthHandler(database.DB, autoChecker),
		Project:     handlers.NewProjectHandler(projectService),
		Service:     handlers.NewServiceHandler(serviceManager, serviceChecker),
		Log:         handlers.NewLogHandler(logService),
		QueryLog:    handlers.NewQueryLogHandler(queryLogService),
		Webhook:     handlers.NewWebhookHandler(ingestService),
		Settings:    handlers.NewSettingsHandler(settingsService, telegram),
		Performance: handlers.NewPerformanceHandler(performanceService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// In-flight checks and webhook analyses get a bounded grace period.
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	select {
	case <-autoChecker.Stop().Done():
	case <-drainCtx.Done():
		slog.Warn("auto checks still running at shutdown")
	}
	if err := ingestService.Wait(drainCtx); err != nil {
		slog.Warn("webhook logs still processing at shutdown", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func newProvider(cfg *config.Config) (analyzer.Provider, error) {
	switch cfg.AIProvider {
	case "ollama":
		return analyzer.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, cfg.AITimeout)
	default:
		if cfg.GroqAPIKey == "" {
			slog.Warn("GROQ_API_KEY is not set, log analysis requests will fail")
		}
		return analyzer.NewGroqProvider(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.GroqModel, cfg.AITimeout), nil
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
