package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetID_RoundTrip(t *testing.T) {
	id := AssetID{Customer: 1, Space: 2, Asset: "img/001.jpg"}
	assert.Equal(t, "1/2/img/001.jpg", id.String())

	parsed, err := ParseAssetID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseAssetID_Invalid(t *testing.T) {
	for _, s := range []string{"", "1/2", "1/2/", "a/2/x", "1/b/x"} {
		_, err := ParseAssetID(s)
		assert.Error(t, err, s)
	}
}

func TestManifestRequest_HasAssets(t *testing.T) {
	assert.False(t, ManifestRequest{}.HasAssets())
	assert.False(t, ManifestRequest{PaintedResources: []PaintedResource{{CanvasPainting: &CanvasPaintingInput{}}}}.HasAssets())
	assert.True(t, ManifestRequest{PaintedResources: []PaintedResource{{Asset: AssetPayload{"id": "a"}}}}.HasAssets())
}
