package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/metrics"
)

// Timeouts per route class. Map composition fans out to the raster service
// once per layer, so the page gets far more headroom than the JSON API.
const (
	pageTimeout   = 120 * time.Second
	seriesTimeout = 90 * time.Second
	apiTimeout    = 15 * time.Second
)

// SetupRoutes registers the page, REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 60 requests per minute per IP. Every map request fans
	// out to the remote raster service, so the cap is deliberately low.
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "SAMEORIGIN")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	// Interactive map page
	page := timeout.NewWithContext(PageHandler(deps), pageTimeout)
	app.Get("/", page)
	app.Post("/", page)

	// Generated chart images
	if deps.ChartsDir != "" {
		app.Static("/static/charts", deps.ChartsDir, fiber.Static{
			MaxAge: 3600,
		})
	}

	// REST API v1
	v1 := app.Group("/v1")
	v1.Get("/countries", timeout.NewWithContext(ListCountriesHandler(deps), apiTimeout))
	v1.Get("/countries/:name", timeout.NewWithContext(GetCountryHandler(deps), apiTimeout))
	v1.Get("/timeseries", timeout.NewWithContext(TimeSeriesHandler(deps), seriesTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket render-activity feed
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
