package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// ActorHeader names the caller on whose behalf a request is made.
	ActorHeader = "X-Actor"
	// ActorLocalsKey is the fiber locals key holding the resolved actor.
	ActorLocalsKey = "actor"
	// DefaultActor is used when the caller does not name one.
	DefaultActor = "api"
)

// Config holds the auth middleware configuration.
type Config struct {
	// ApiKey is the shared secret. An empty key disables the check.
	ApiKey string
}

// New returns a middleware that validates the API key and resolves the actor.
// The key is accepted from the X-API-Key header or a Bearer Authorization header.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey != "" {
			key := c.Get("X-API-Key")
			if key == "" {
				key = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
			}
		}

		actor := strings.TrimSpace(c.Get(ActorHeader))
		if actor == "" {
			actor = DefaultActor
		}
		c.Locals(ActorLocalsKey, actor)
		return c.Next()
	}
}

// Actor returns the actor resolved for the request.
func Actor(c *fiber.Ctx) string {
	if a, ok := c.Locals(ActorLocalsKey).(string); ok && a != "" {
		return a
	}
	return DefaultActor
}
