package manifest

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"iiif-presentation/core/middleware/auth"
	"iiif-presentation/feature/manifest/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *fixture) {
	f := setupService(t)
	f.allowMirror()

	app := fiber.New()
	app.Use(auth.New(auth.Config{}))
	NewHandler(f.svc).RegisterRoutes(app)
	return app, f
}

func jsonBody(t *testing.T, v any) io.Reader {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(data))
}

func TestHandleUpsert(t *testing.T) {
	app, f := setupTestApp(t)

	req := httptest.NewRequest("PUT", "/7/manifests/m1", jsonBody(t, structural()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.ActorHeader, "carol")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Created", body["state"])

	var m models.Manifest
	require.NoError(t, f.db.Take(&m).Error)
	assert.Equal(t, "carol", m.CreatedBy)
	assert.Equal(t, `"`+m.ETag+`"`, etag)

	// Without If-Match the update is refused.
	req = httptest.NewRequest("PUT", "/7/manifests/m1", jsonBody(t, structural()))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPreconditionFailed, resp.StatusCode)

	var failure map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.Equal(t, "ETagMismatch", failure["code"])
	assert.Equal(t, "PreconditionFailed", failure["category"])

	req = httptest.NewRequest("PUT", "/7/manifests/m1", jsonBody(t, structural()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", etag)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEqual(t, etag, resp.Header.Get("ETag"))
}

func TestHandleCreate(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/7/manifests", jsonBody(t, structural()))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	manifest := body["manifest"].(map[string]any)
	assert.Equal(t, testBaseURL+"/7/manifests/gen1", manifest["id"])
}

func TestHandleBadRequests(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "invalid json", method: "POST", path: "/7/manifests", body: "{", status: fiber.StatusBadRequest},
		{name: "invalid customer", method: "PUT", path: "/abc/manifests/m1", body: "{}", status: fiber.StatusBadRequest},
		{name: "invalid canvas id", method: "PUT", path: "/7/manifests/m1",
			body:   `{"paintedResources":[{"canvasPainting":{"canvasId":"https://iiif.example.com/8/canvases/x"}}]}`,
			status: fiber.StatusBadRequest},
		{name: "unknown manifest", method: "GET", path: "/7/manifests/missing", status: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestUnquoteETag(t *testing.T) {
	assert.Equal(t, "abc", unquoteETag(`"abc"`))
	assert.Equal(t, "abc", unquoteETag(`W/"abc"`))
	assert.Equal(t, "abc", unquoteETag("abc"))
	assert.Equal(t, "", unquoteETag(""))
}
