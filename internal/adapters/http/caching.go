package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/minerals/") || strings.HasPrefix(path, "/v1/rocks/"):
			ttl = "public, max-age=600" // knowledge records change rarely

		case strings.HasPrefix(path, "/v1/knowledge/search"):
			ttl = "public, max-age=300"

		case strings.HasSuffix(path, "/map") || strings.HasSuffix(path, "/stats"):
			ttl = "no-cache" // derived views follow the latest descriptions

		case strings.HasPrefix(path, "/v1/surveys"):
			ttl = "public, max-age=30"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
