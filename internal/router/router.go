package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skillswap-labs/skillswap-api/internal/config"
	"github.com/skillswap-labs/skillswap-api/internal/handler"
	"github.com/skillswap-labs/skillswap-api/internal/middleware"
	"github.com/skillswap-labs/skillswap-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	BrowseHandler       *handler.BrowseHandler
	SwapHandler         *handler.SwapHandler
	ChatHandler         *handler.ChatHandler
	SessionHandler      *handler.SessionHandler
	RatingHandler       *handler.RatingHandler
	AdminHandler        *handler.AdminHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)

		authProtected := api.Group("/auth", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	if deps.ProfileHandler != nil {
		profile := api.Group("/profile", jwtMiddleware)
		deps.ProfileHandler.Register(profile)
	}

	if deps.BrowseHandler != nil {
		browse := api.Group("/", jwtMiddleware)
		deps.BrowseHandler.Register(browse)
	}

	if deps.SwapHandler != nil {
		swaps := api.Group("/requests", jwtMiddleware)
		deps.SwapHandler.Register(swaps)
	}

	if deps.ChatHandler != nil {
		chat := api.Group("/chat", jwtMiddleware)
		deps.ChatHandler.Register(chat)
	}

	if deps.SessionHandler != nil {
		sessions := api.Group("/sessions", jwtMiddleware)
		deps.SessionHandler.Register(sessions)
	}

	if deps.RatingHandler != nil {
		ratings := api.Group("/ratings", jwtMiddleware)
		deps.RatingHandler.Register(ratings)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin"))
		deps.AdminHandler.Register(admin)
	}
}
