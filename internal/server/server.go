// Package server assembles the gateway: middleware, routes, static assets,
// and the global error handler. Kept out of main so the integration tests
// can build the whole app against a fake upstream.
package server

import (
	"net/http"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/recorre/indie-comments-cloud/internal/config"
	"github.com/recorre/indie-comments-cloud/internal/handlers"
	"github.com/recorre/indie-comments-cloud/internal/middleware"
	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/services"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/internal/widget"
)

// Options tune app construction for tests.
type Options struct {
	// DisableRequestLogging silences the per-request logger.
	DisableRequestLogging bool
	// Clock overrides time.Now for the site cache and submit throttle.
	Clock func() time.Time
}

// New builds the gateway application.
func New(cfg *config.Config, opts Options) *fiber.App {
	nc := nocode.New(cfg.UpstreamBaseURL, cfg.UpstreamInstance, cfg.UpstreamAPIKey, cfg.HTTPTimeout)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenValidity)
	accounts := services.NewAccountService(nc, tokens)
	sites := services.NewSiteService(nc)
	moderation := services.NewModerationService(nc)
	widgetSvc := widget.NewService(nc,
		widget.NewSiteCache(cfg.SiteCacheTTL, opts.Clock),
		widget.NewThrottle(cfg.SubmitMinInterval, opts.Clock))

	accountHandler := &handlers.AccountHandler{Accounts: accounts}
	siteHandler := &handlers.SiteHandler{Sites: sites}
	moderationHandler := &handlers.ModerationHandler{Moderation: moderation}
	widgetHandler := &handlers.WidgetHandler{Widget: widgetSvc}
	proxyHandler := &handlers.ProxyHandler{Cfg: cfg, HTTP: &http.Client{Timeout: cfg.HTTPTimeout}}
	healthHandler := &handlers.HealthHandler{Cfg: cfg}

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	if !opts.DisableRequestLogging {
		app.Use(logger.New())
	}
	app.Use(compress.New())
	app.Use(cors.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("indie_comments")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", healthHandler.Check)

	// API routes under /api
	api := app.Group("/api")

	// Specialized proxy endpoints must register before the passthrough.
	api.Post("/proxy/login", accountHandler.ProxyLogin)
	api.Post("/proxy/create/users", accountHandler.ProxySignup)
	api.All("/proxy/*", proxyHandler.Forward)

	// Panel routes
	panel := api.Group("/panel")
	panel.Post("/signup", accountHandler.Signup)
	panel.Post("/login", accountHandler.Login)

	auth := middleware.Auth(tokens)
	panel.Get("/me", auth, accountHandler.Me)
	panel.Post("/upgrade", auth, accountHandler.Upgrade)
	panel.Get("/sites", auth, siteHandler.List)
	panel.Post("/sites", auth, siteHandler.Create)
	panel.Delete("/sites/:id", auth, siteHandler.Delete)
	panel.Get("/comments/pending", auth, moderationHandler.Pending)
	panel.Put("/comments/:id/approve", auth, moderationHandler.Approve)
	panel.Delete("/comments/:id", auth, moderationHandler.Reject)

	// Widget routes (public)
	api.Get("/widget/comments", widgetHandler.Bootstrap)
	api.Post("/widget/comments", widgetHandler.Submit)

	// Embedded static surfaces: the demo page + widget script and the
	// admin panel.
	registerStatic(app)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

// errorHandler renders uncaught errors as the standard envelope, mapping
// taxonomy errors to their statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*types.Error); ok {
		code = e.HTTPStatus()
		message = e.Message
		errorType = string(e.Kind)
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
