package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/config"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Project     *handlers.ProjectHandler
	Service     *handlers.ServiceHandler
	Log         *handlers.LogHandler
	QueryLog    *handlers.QueryLogHandler
	Webhook     *handlers.WebhookHandler
	Settings    *handlers.SettingsHandler
	Performance *handlers.PerformanceHandler
}

func perIP(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, revoker session.Revoker, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(perIP(120))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(perIP(10))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	jwt := middleware.JWTProtected(cfg, revoker)
	resolveAdmin := middleware.ResolveAdmin(db, cfg)
	adminOnly := middleware.AdminRequired(db, cfg)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/auth/me", jwt, h.Auth.Me)
	api.Put("/auth/profile", jwt, h.Auth.UpdateProfile)
	api.Put("/auth/password", jwt, h.Auth.ChangePassword)

	// Unauthenticated ingestion from monitored applications; registered
	// before the /logs group so its JWT middleware never runs for them.
	api.Post("/logs/push", h.Log.Push)
	api.Post("/webhook/log", h.Webhook.Log)

	projects := api.Group("/projects", jwt)
	projects.Get("/", h.Project.List)
	projects.Post("/", h.Project.Create)
	projects.Get("/:id/users/available", adminOnly, h.Project.AvailableUsers)
	projects.Get("/:id", h.Project.Get)
	projects.Put("/:id", h.Project.Update)
	projects.Delete("/:id", h.Project.Delete)
	projects.Post("/:id/assign", resolveAdmin, h.Project.Assign)
	projects.Delete("/:id/assign/:userId", resolveAdmin, h.Project.Unassign)

	services := api.Group("/services", jwt)
	services.Get("/", h.Service.List)
	services.Post("/", h.Service.Create)
	services.Get("/status", h.Service.StatusAll)
	services.Get("/:id/status", h.Service.Status)
	services.Get("/:id", h.Service.Get)
	services.Put("/:id", h.Service.Update)
	services.Delete("/:id", h.Service.Delete)

	logs := api.Group("/logs", jwt, resolveAdmin)
	logs.Post("/analyze", h.Log.Analyze)
	logs.Get("/", h.Log.List)
	logs.Get("/:id", h.Log.Get)

	api.Post("/webhook/analyze", jwt, h.Webhook.Analyze)
	api.Post("/webhook/optimize-query", jwt, h.QueryLog.Optimize)

	queryLogs := api.Group("/query-logs", jwt)
	queryLogs.Get("/", h.QueryLog.List)
	queryLogs.Get("/:id", h.QueryLog.Get)

	api.Get("/performance/check", jwt, h.Performance.Check)

	// Admin settings (protected + admin required)
	settings := api.Group("/settings", jwt, adminOnly)
	settings.Get("/", h.Settings.Get)
	settings.Post("/", h.Settings.Update)
	settings.Post("/test-notification", h.Settings.TestNotification)
}
