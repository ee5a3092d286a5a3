package assetservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"iiif-presentation/core/assetservice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) assetservice.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := assetservice.NewClient(assetservice.Config{Endpoint: srv.URL + "/", ApiKey: "secret"})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	client, err := assetservice.NewClient(assetservice.Config{Endpoint: "  "})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestCreateSpace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers/7/spaces", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Manifest m1", body["name"])

		_, _ = w.Write([]byte(`{"id": 42}`))
	})

	id, err := client.CreateSpace(context.Background(), 7, "Manifest m1")
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestBulkIngest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/7/queue/batch", r.URL.Path)

		var body struct {
			Members []map[string]any `json:"members"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Members, 2)

		_, _ = w.Write([]byte(`{"batches":[{"id":100,"submitted":"2026-01-02T03:04:05Z","count":2,"assets":["7/1/a","7/1/b"]}]}`))
	})

	handles, err := client.BulkIngest(context.Background(), 7, []assetservice.Asset{
		{"id": "a", "space": 1},
		{"id": "b", "space": 1},
	})
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, 100, handles[0].ID)
	assert.Equal(t, []string{"7/1/a", "7/1/b"}, handles[0].Assets)
}

func TestBulkIngest_EmptySkipsCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no call expected")
	})

	handles, err := client.BulkIngest(context.Background(), 7, nil)
	assert.NoError(t, err)
	assert.Empty(t, handles)
}

func TestBulkExistenceLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers/7/allImages", r.URL.Path)
		_, _ = w.Write([]byte(`{"members":[{"id":"7/1/known"}]}`))
	})

	known, err := client.BulkExistenceLookup(context.Background(), 7, []string{"7/1/known", "7/1/unknown"})
	require.NoError(t, err)
	assert.Contains(t, known, "7/1/known")
	assert.NotContains(t, known, "7/1/unknown")
}

func TestPatchAssetManifestAssociation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var body struct {
			Members   []map[string]string `json:"members"`
			Field     string              `json:"field"`
			Operation string              `json:"operation"`
			Value     []string            `json:"value"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "manifests", body.Field)
		assert.Equal(t, "add", body.Operation)
		assert.Equal(t, []string{"m1"}, body.Value)
		assert.Equal(t, "7/1/a", body.Members[0]["id"])

		w.WriteHeader(http.StatusNoContent)
	})

	err := client.PatchAssetManifestAssociation(context.Background(), 7, []string{"7/1/a"}, assetservice.PatchAdd, []string{"m1"})
	assert.NoError(t, err)
}

func TestErrorStatusIsPreserved(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`space exists`))
	})

	_, err := client.CreateSpace(context.Background(), 7, "x")
	require.Error(t, err)

	var svcErr *assetservice.Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusConflict, svcErr.HTTPStatusCode())
	assert.Contains(t, svcErr.Error(), "space exists")
}
