package disposition

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/assetservice"
	"iiif-presentation/core/assetservice/mocks"
	"iiif-presentation/feature/manifest/canvas"
	"iiif-presentation/feature/manifest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ownershipMock struct {
	mock.Mock
}

func (m *ownershipMock) FindAssetOwners(ctx context.Context, customerID int, assetIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, customerID, assetIDs)
	if owners, ok := args.Get(0).(map[string][]string); ok {
		return owners, args.Error(1)
	}
	return nil, args.Error(1)
}

func asset(space int, name string, reingest bool) *canvas.AssetRef {
	return &canvas.AssetRef{
		ID:       models.AssetID{Customer: 1, Space: space, Asset: name},
		Payload:  models.AssetPayload{"id": name, "space": space},
		Reingest: reingest,
	}
}

func TestClassify_MixedDispositions(t *testing.T) {
	owners := new(ownershipMock)
	client := new(mocks.Client)
	c := NewClassifier(owners, client, zap.NewNop())

	req := Request{
		CustomerID: 1,
		ManifestID: "m1",
		Assets: []*canvas.AssetRef{
			asset(2, "same", false),
			asset(2, "other", true),
			asset(2, "known", false),
			asset(2, "unknown", false),
			asset(2, "forced", true),
		},
	}

	owners.On("FindAssetOwners", mock.Anything, 1,
		[]string{"1/2/same", "1/2/other", "1/2/known", "1/2/unknown", "1/2/forced"}).
		Return(map[string][]string{"1/2/same": {"m1"}, "1/2/other": {"m9"}}, nil)
	client.On("BulkExistenceLookup", mock.Anything, 1, []string{"1/2/known", "1/2/unknown"}).
		Return(map[string]struct{}{"1/2/known": {}}, nil).Once()

	plan, err := c.Classify(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plan.Items, 5)

	assert.Equal(t, Decision{ManagedSameManifest, NoIngest, false}, plan.Items[0].Decision)
	assert.Equal(t, Decision{ManagedOtherManifest, IngestWithoutManifestTag, true}, plan.Items[1].Decision)
	assert.Equal(t, Decision{ManagedExternally, NoIngest, true}, plan.Items[2].Decision)
	assert.Equal(t, Decision{Unmanaged, IngestWithManifestTag, false}, plan.Items[3].Decision)
	assert.Equal(t, Decision{Unmanaged, IngestWithManifestTag, false}, plan.Items[4].Decision)

	assert.Equal(t, []string{"1/2/other", "1/2/known"}, plan.ToPatch())
	assert.Len(t, plan.ToIngest(), 3)
	assert.Equal(t, 5, plan.Summary.Total)
	assert.Equal(t, 2, plan.Summary.ByDisposition[Unmanaged])
	owners.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestClassify_NewSpaceIsNewRegardlessOfReingest(t *testing.T) {
	owners := new(ownershipMock)
	client := new(mocks.Client)
	c := NewClassifier(owners, client, zap.NewNop())

	space := 42
	req := Request{
		CustomerID: 1,
		ManifestID: "m1",
		NewSpace:   &space,
		Assets:     []*canvas.AssetRef{asset(42, "a", true), asset(42, "b", false)},
	}
	owners.On("FindAssetOwners", mock.Anything, 1, mock.Anything).Return(map[string][]string{}, nil)

	plan, err := c.Classify(context.Background(), req)
	require.NoError(t, err)

	for _, it := range plan.Items {
		assert.Equal(t, New, it.Disposition)
		assert.Equal(t, IngestWithManifestTag, it.Ingest)
		assert.False(t, it.Patch)
	}
	assert.Empty(t, plan.ToPatch())
	client.AssertNotCalled(t, "BulkExistenceLookup", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "PatchAssetManifestAssociation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClassify_ChunksOwnershipLookups(t *testing.T) {
	owners := new(ownershipMock)
	client := new(mocks.Client)
	c := NewClassifier(owners, client, zap.NewNop())
	c.chunkSize = 2

	var assets []*canvas.AssetRef
	for i := 0; i < 5; i++ {
		assets = append(assets, asset(3, fmt.Sprintf("a%d", i), true))
	}

	owners.On("FindAssetOwners", mock.Anything, 1, mock.MatchedBy(func(ids []string) bool {
		return len(ids) <= 2
	})).Return(map[string][]string{"1/3/a4": {"m2"}}, nil).Times(3)

	plan, err := c.Classify(context.Background(), Request{CustomerID: 1, ManifestID: "m1", Assets: assets})
	require.NoError(t, err)

	owners.AssertNumberOfCalls(t, "FindAssetOwners", 3)
	assert.Equal(t, ManagedOtherManifest, plan.Items[4].Disposition)
	client.AssertNotCalled(t, "BulkExistenceLookup", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassify_Failures(t *testing.T) {
	t.Run("ownership lookup", func(t *testing.T) {
		owners := new(ownershipMock)
		client := new(mocks.Client)
		c := NewClassifier(owners, client, zap.NewNop())
		owners.On("FindAssetOwners", mock.Anything, 1, mock.Anything).Return(nil, errors.New("db down"))

		plan, err := c.Classify(context.Background(), Request{CustomerID: 1, ManifestID: "m1", Assets: []*canvas.AssetRef{asset(2, "a", false)}})
		assert.Nil(t, plan)
		assert.True(t, apperr.IsKind(err, apperr.KindUnexpected))
	})

	t.Run("existence lookup", func(t *testing.T) {
		owners := new(ownershipMock)
		client := new(mocks.Client)
		c := NewClassifier(owners, client, zap.NewNop())
		owners.On("FindAssetOwners", mock.Anything, 1, mock.Anything).Return(map[string][]string{}, nil)
		client.On("BulkExistenceLookup", mock.Anything, 1, mock.Anything).
			Return(nil, &assetservice.Error{StatusCode: 409, Body: "locked"})

		plan, err := c.Classify(context.Background(), Request{CustomerID: 1, ManifestID: "m1", Assets: []*canvas.AssetRef{asset(2, "a", false)}})
		assert.Nil(t, plan)
		require.True(t, apperr.IsKind(err, apperr.KindExternal))
		assert.Equal(t, apperr.CategoryConflict, apperr.As(err).Category())
	})
}

func TestClassify_NoAssets(t *testing.T) {
	c := NewClassifier(new(ownershipMock), new(mocks.Client), zap.NewNop())
	plan, err := c.Classify(context.Background(), Request{CustomerID: 1, ManifestID: "m1"})
	require.NoError(t, err)
	assert.Empty(t, plan.Items)
}
