package coordinator

import (
	"context"
	"testing"
	"time"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/assetservice"
	"iiif-presentation/core/assetservice/mocks"
	"iiif-presentation/feature/manifest/canvas"
	"iiif-presentation/feature/manifest/disposition"
	"iiif-presentation/feature/manifest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spacelessPlan() *canvas.Plan {
	return &canvas.Plan{Entries: []canvas.Entry{
		{
			Row:   &models.CanvasPainting{},
			Asset: &canvas.AssetRef{ID: models.AssetID{Customer: 1, Asset: "a"}, NeedsSpace: true},
		},
		{Row: &models.CanvasPainting{}},
	}}
}

func TestEnsureSpace(t *testing.T) {
	t.Run("creates and stamps when an asset has no space", func(t *testing.T) {
		client := new(mocks.Client)
		c := New(client, zap.NewNop())
		plan := spacelessPlan()
		client.On("CreateSpace", mock.Anything, 1, "Book").Return(77, nil).Once()

		res, err := c.EnsureSpace(context.Background(), SpaceRequest{CustomerID: 1, ManifestID: "m1", Label: "Book", Plan: plan})
		require.NoError(t, err)

		assert.True(t, res.Created)
		assert.Equal(t, 77, *res.SpaceID)
		assert.False(t, plan.NeedsSpace())
		assert.Equal(t, "1/77/a", *plan.Entries[0].Row.AssetID)
		client.AssertExpectations(t)
	})

	t.Run("reuses persisted space", func(t *testing.T) {
		client := new(mocks.Client)
		c := New(client, zap.NewNop())
		plan := spacelessPlan()
		existing := 5

		res, err := c.EnsureSpace(context.Background(), SpaceRequest{CustomerID: 1, ManifestID: "m1", Existing: &existing, Requested: true, Plan: plan})
		require.NoError(t, err)

		assert.False(t, res.Created)
		assert.Equal(t, 5, *res.SpaceID)
		assert.Equal(t, "1/5/a", *plan.Entries[0].Row.AssetID)
		client.AssertNotCalled(t, "CreateSpace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("explicit request without assets", func(t *testing.T) {
		client := new(mocks.Client)
		c := New(client, zap.NewNop())
		client.On("CreateSpace", mock.Anything, 1, "Manifest m1").Return(9, nil).Once()

		res, err := c.EnsureSpace(context.Background(), SpaceRequest{CustomerID: 1, ManifestID: "m1", Requested: true})
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Equal(t, 9, *res.SpaceID)
	})

	t.Run("nothing needed", func(t *testing.T) {
		client := new(mocks.Client)
		c := New(client, zap.NewNop())

		res, err := c.EnsureSpace(context.Background(), SpaceRequest{CustomerID: 1, ManifestID: "m1", Plan: &canvas.Plan{}})
		require.NoError(t, err)
		assert.Nil(t, res.SpaceID)
		client.AssertNotCalled(t, "CreateSpace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service failure keeps status", func(t *testing.T) {
		client := new(mocks.Client)
		c := New(client, zap.NewNop())
		client.On("CreateSpace", mock.Anything, 1, mock.Anything).Return(0, &assetservice.Error{StatusCode: 400, Body: "bad"})

		_, err := c.EnsureSpace(context.Background(), SpaceRequest{CustomerID: 1, ManifestID: "m1", Requested: true})
		require.Error(t, err)
		assert.Equal(t, apperr.CategoryBadRequest, apperr.As(err).Category())
	})
}

func item(name string, ingest disposition.IngestMode, patch bool, payload models.AssetPayload) disposition.Item {
	return disposition.Item{
		Asset:    &canvas.AssetRef{ID: models.AssetID{Customer: 1, Space: 2, Asset: name}, Payload: payload},
		Decision: disposition.Decision{Ingest: ingest, Patch: patch},
	}
}

func TestExecute(t *testing.T) {
	client := new(mocks.Client)
	c := New(client, zap.NewNop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	plan := &disposition.Plan{Items: []disposition.Item{
		item("tagged", disposition.IngestWithManifestTag, false, models.AssetPayload{"id": "tagged", "mediaType": "image/jpeg", "manifests": []any{"other"}}),
		item("untagged", disposition.IngestWithoutManifestTag, true, models.AssetPayload{"id": "untagged"}),
		item("patched", disposition.NoIngest, true, models.AssetPayload{"id": "patched"}),
		item("ignored", disposition.NoIngest, false, models.AssetPayload{"id": "ignored"}),
	}}

	client.On("BulkIngest", mock.Anything, 1, []assetservice.Asset{
		{"id": "tagged", "space": 2, "mediaType": "image/jpeg", "manifests": []string{"other", "m1"}},
		{"id": "untagged", "space": 2},
	}).Return([]assetservice.BatchHandle{{ID: 31, Count: 2, Assets: []string{"1/2/tagged", "1/2/untagged"}}}, nil).Once()
	client.On("PatchAssetManifestAssociation", mock.Anything, 1, []string{"1/2/untagged", "1/2/patched"}, assetservice.PatchAdd, []string{"m1"}).
		Return(nil).Once()

	res, err := c.Execute(context.Background(), 1, "m1", plan)
	require.NoError(t, err)

	require.Len(t, res.Batches, 1)
	assert.Equal(t, 31, res.Batches[0].ID)
	assert.Equal(t, models.BatchIngesting, res.Batches[0].Status)
	assert.Equal(t, fixed, res.Batches[0].Submitted)
	assert.Equal(t, "m1", res.Batches[0].ManifestID)
	assert.Contains(t, res.Submitted, "1/2/tagged")
	assert.Contains(t, res.Submitted, "1/2/untagged")
	assert.NotContains(t, res.Submitted, "1/2/patched")
	assert.Equal(t, []string{"1/2/untagged", "1/2/patched"}, res.Patched)
	client.AssertExpectations(t)
}

func TestExecute_IngestFailureSkipsPatch(t *testing.T) {
	client := new(mocks.Client)
	c := New(client, zap.NewNop())

	plan := &disposition.Plan{Items: []disposition.Item{
		item("a", disposition.IngestWithoutManifestTag, true, models.AssetPayload{"id": "a"}),
	}}
	client.On("BulkIngest", mock.Anything, 1, mock.Anything).Return(nil, &assetservice.Error{StatusCode: 404, Body: "no space"})

	res, err := c.Execute(context.Background(), 1, "m1", plan)
	assert.Nil(t, res)
	require.True(t, apperr.IsKind(err, apperr.KindExternal))
	assert.Equal(t, apperr.CategoryNotFound, apperr.As(err).Category())
	client.AssertNotCalled(t, "PatchAssetManifestAssociation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_NothingToDo(t *testing.T) {
	client := new(mocks.Client)
	c := New(client, zap.NewNop())

	res, err := c.Execute(context.Background(), 1, "m1", &disposition.Plan{})
	require.NoError(t, err)
	assert.Empty(t, res.Batches)
	assert.Empty(t, res.Submitted)
	client.AssertExpectations(t)
}

func TestWithManifest(t *testing.T) {
	assert.Equal(t, []string{"m1"}, withManifest(nil, "m1"))
	assert.Equal(t, []string{"a", "m1"}, withManifest([]string{"a", "m1"}, "m1"))
	assert.Equal(t, []string{"a", "m1"}, withManifest("a", "m1"))
}
