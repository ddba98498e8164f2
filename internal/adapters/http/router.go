package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/mjkeller/geosurvey/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
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

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
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

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness, no timeout wrapper: fast internal checks
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 with a 15s per-request timeout; map generation gets longer
	v1 := app.Group("/v1")
	v1.Post("/surveys", timeout.NewWithContext(CreateSurveyHandler(deps), 15*time.Second))
	v1.Get("/surveys", timeout.NewWithContext(ListSurveysHandler(deps), 15*time.Second))
	v1.Get("/surveys/nearby", timeout.NewWithContext(NearbySurveysHandler(deps), 15*time.Second))
	v1.Get("/surveys/:id", timeout.NewWithContext(GetSurveyHandler(deps), 15*time.Second))
	v1.Get("/surveys/:id/stats", timeout.NewWithContext(SurveyStatsHandler(deps), 15*time.Second))
	v1.Post("/surveys/:id/descriptions", timeout.NewWithContext(AddDescriptionHandler(deps), 15*time.Second))
	v1.Get("/surveys/:id/map", timeout.NewWithContext(GetProcessedMapHandler(deps), 15*time.Second))
	v1.Post("/surveys/:id/map", timeout.NewWithContext(GenerateMapHandler(deps), 60*time.Second))

	v1.Get("/minerals/:name", timeout.NewWithContext(GetMineralHandler(deps), 15*time.Second))
	v1.Post("/minerals", timeout.NewWithContext(AddMineralHandler(deps), 15*time.Second))
	v1.Get("/rocks/:name", timeout.NewWithContext(GetRockHandler(deps), 15*time.Second))
	v1.Post("/rocks", timeout.NewWithContext(AddRockHandler(deps), 15*time.Second))
	v1.Get("/knowledge/search", timeout.NewWithContext(SearchKnowledgeHandler(deps), 15*time.Second))
	v1.Get("/knowledge/:name", timeout.NewWithContext(TypeDetailsHandler(deps), 15*time.Second))
	v1.Post("/knowledge/update", timeout.NewWithContext(UpdateKnowledgeHandler(deps), 120*time.Second))

	v1.Post("/identify", timeout.NewWithContext(IdentifyHandler(deps), 30*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
