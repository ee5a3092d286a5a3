package assetservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client defines the operations used against the asset-management service.
type Client interface {
	// CreateSpace creates a new space for the customer and returns its id.
	CreateSpace(ctx context.Context, customerID int, label string) (int, error)
	// BulkIngest submits all assets in a single call and returns the batch handles.
	BulkIngest(ctx context.Context, customerID int, assets []Asset) ([]BatchHandle, error)
	// BulkExistenceLookup returns the subset of asset ids the service already knows.
	BulkExistenceLookup(ctx context.Context, customerID int, assetIDs []string) (map[string]struct{}, error)
	// PatchAssetManifestAssociation changes the manifests field of the given assets.
	PatchAssetManifestAssociation(ctx context.Context, customerID int, assetIDs []string, op PatchOperation, manifestIDs []string) error
}

// Error is returned for any non-2xx answer from the service.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("asset service http %d: %s", e.StatusCode, e.Body)
}

// HTTPStatusCode returns the upstream status.
func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the asset service.
func NewClient(cfg Config) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("asset service endpoint is required")
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &httpClient{
		baseURL:    baseURL,
		apiKey:     cfg.ApiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

func (c *httpClient) CreateSpace(ctx context.Context, customerID int, label string) (int, error) {
	var out createSpaceResponse
	path := fmt.Sprintf("/customers/%d/spaces", customerID)
	if err := c.do(ctx, http.MethodPost, path, createSpaceRequest{Name: label}, &out); err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, fmt.Errorf("asset service returned no space id")
	}
	return out.ID, nil
}

func (c *httpClient) BulkIngest(ctx context.Context, customerID int, assets []Asset) ([]BatchHandle, error) {
	if len(assets) == 0 {
		return nil, nil
	}
	var out ingestResponse
	path := fmt.Sprintf("/customers/%d/queue/batch", customerID)
	if err := c.do(ctx, http.MethodPost, path, ingestRequest{Members: assets}, &out); err != nil {
		return nil, err
	}
	return out.Batches, nil
}

func (c *httpClient) BulkExistenceLookup(ctx context.Context, customerID int, assetIDs []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if len(assetIDs) == 0 {
		return known, nil
	}

	var out lookupResponse
	path := fmt.Sprintf("/customers/%d/allImages", customerID)
	if err := c.do(ctx, http.MethodPost, path, lookupRequest{Members: toMembers(assetIDs)}, &out); err != nil {
		return nil, err
	}
	for _, m := range out.Members {
		known[m.ID] = struct{}{}
	}
	return known, nil
}

func (c *httpClient) PatchAssetManifestAssociation(ctx context.Context, customerID int, assetIDs []string, op PatchOperation, manifestIDs []string) error {
	if len(assetIDs) == 0 {
		return nil
	}
	body := patchRequest{
		Members:   toMembers(assetIDs),
		Field:     "manifests",
		Operation: op,
		Value:     manifestIDs,
	}
	path := fmt.Sprintf("/customers/%d/allImages", customerID)
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("asset service %s %s: %w", method, path, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("failed to read asset service response: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode asset service response: %w", err)
	}
	return nil
}

func toMembers(ids []string) []member {
	members := make([]member, 0, len(ids))
	for _, id := range ids {
		members = append(members, member{ID: id})
	}
	return members
}
