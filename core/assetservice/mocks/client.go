package mocks

import (
	"context"

	"iiif-presentation/core/assetservice"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of assetservice.Client
type Client struct {
	mock.Mock
}

func (m *Client) CreateSpace(ctx context.Context, customerID int, label string) (int, error) {
	args := m.Called(ctx, customerID, label)
	return args.Int(0), args.Error(1)
}

func (m *Client) BulkIngest(ctx context.Context, customerID int, assets []assetservice.Asset) ([]assetservice.BatchHandle, error) {
	args := m.Called(ctx, customerID, assets)
	if handles, ok := args.Get(0).([]assetservice.BatchHandle); ok {
		return handles, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) BulkExistenceLookup(ctx context.Context, customerID int, assetIDs []string) (map[string]struct{}, error) {
	args := m.Called(ctx, customerID, assetIDs)
	if known, ok := args.Get(0).(map[string]struct{}); ok {
		return known, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) PatchAssetManifestAssociation(ctx context.Context, customerID int, assetIDs []string, op assetservice.PatchOperation, manifestIDs []string) error {
	args := m.Called(ctx, customerID, assetIDs, op, manifestIDs)
	return args.Error(0)
}
