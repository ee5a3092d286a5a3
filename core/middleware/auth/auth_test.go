package auth_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"iiif-presentation/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(auth.Actor(c))
	})
	return app
}

func TestAuth(t *testing.T) {
	app := setupApp("secret")

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"Missing", "", "", fiber.StatusUnauthorized},
		{"Wrong", "X-API-Key", "nope", fiber.StatusUnauthorized},
		{"APIKeyHeader", "X-API-Key", "secret", fiber.StatusOK},
		{"Bearer", "Authorization", "Bearer secret", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuth_Actor(t *testing.T) {
	app := setupApp("")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(auth.ActorHeader, "editor@example.org")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "editor@example.org", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, auth.DefaultActor, string(body))
}
