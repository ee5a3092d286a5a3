package coordinator

import (
	"context"
	"fmt"
	"time"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/assetservice"
	"iiif-presentation/feature/manifest/canvas"
	"iiif-presentation/feature/manifest/disposition"
	"iiif-presentation/feature/manifest/models"

	"go.uber.org/zap"
)

// manifestsField is the asset field holding the manifests an asset belongs to.
const manifestsField = "manifests"

// Coordinator drives the asset service on behalf of a manifest write.
type Coordinator struct {
	client assetservice.Client
	logger *zap.Logger
	now    func() time.Time
}

// New creates a coordinator.
func New(client assetservice.Client, logger *zap.Logger) *Coordinator {
	return &Coordinator{client: client, logger: logger, now: time.Now}
}

// SpaceRequest describes the space needs of one write.
type SpaceRequest struct {
	CustomerID int
	ManifestID string
	Label      string
	// Existing is the space already persisted on the manifest.
	Existing *int
	// Requested is set when the caller asked for a space explicitly.
	Requested bool
	Plan      *canvas.Plan
}

// SpaceResult is the space the manifest ends up with.
type SpaceResult struct {
	SpaceID *int
	// Created is set only when the space was created by this call.
	Created bool
}

// EnsureSpace returns the manifest's space, creating it when requested or when an asset
// has none. A persisted space is never created again. Space-less assets are stamped.
func (c *Coordinator) EnsureSpace(ctx context.Context, req SpaceRequest) (SpaceResult, error) {
	needed := req.Plan != nil && req.Plan.NeedsSpace()

	if req.Existing != nil {
		if needed {
			req.Plan.AssignSpace(*req.Existing)
		}
		return SpaceResult{SpaceID: req.Existing}, nil
	}
	if !req.Requested && !needed {
		return SpaceResult{}, nil
	}

	label := req.Label
	if label == "" {
		label = fmt.Sprintf("Manifest %s", req.ManifestID)
	}
	spaceID, err := c.client.CreateSpace(ctx, req.CustomerID, label)
	if err != nil {
		return SpaceResult{}, apperr.FromExternal("create space", err)
	}

	c.logger.Info("Created space for manifest",
		zap.Int("customer_id", req.CustomerID),
		zap.String("manifest_id", req.ManifestID),
		zap.Int("space_id", spaceID))

	if needed {
		req.Plan.AssignSpace(spaceID)
	}
	return SpaceResult{SpaceID: &spaceID, Created: true}, nil
}

// Result is what the asset service accepted.
type Result struct {
	Batches []models.Batch
	// Submitted holds the asset ids sent for ingestion.
	Submitted map[string]struct{}
	Patched   []string
}

// Execute submits every ingestion in one batch call, then extends the manifest
// association of the patch set in one call.
func (c *Coordinator) Execute(ctx context.Context, customerID int, manifestID string, plan *disposition.Plan) (*Result, error) {
	res := &Result{Submitted: make(map[string]struct{})}
	if plan == nil {
		return res, nil
	}

	toIngest := plan.ToIngest()
	if len(toIngest) > 0 {
		payloads := make([]assetservice.Asset, 0, len(toIngest))
		for _, it := range toIngest {
			payloads = append(payloads, ingestPayload(it, manifestID))
			res.Submitted[it.Asset.ID.String()] = struct{}{}
		}

		handles, err := c.client.BulkIngest(ctx, customerID, payloads)
		if err != nil {
			return nil, apperr.FromExternal("bulk ingest", err)
		}
		res.Batches = c.toBatches(customerID, manifestID, handles)
	}

	if patch := plan.ToPatch(); len(patch) > 0 {
		err := c.client.PatchAssetManifestAssociation(ctx, customerID, patch, assetservice.PatchAdd, []string{manifestID})
		if err != nil {
			return nil, apperr.FromExternal("patch manifest association", err)
		}
		res.Patched = patch
	}

	c.logger.Info("Coordinated assets",
		zap.Int("customer_id", customerID),
		zap.String("manifest_id", manifestID),
		zap.Int("ingested", len(res.Submitted)),
		zap.Int("batches", len(res.Batches)),
		zap.Int("patched", len(res.Patched)))

	return res, nil
}

func (c *Coordinator) toBatches(customerID int, manifestID string, handles []assetservice.BatchHandle) []models.Batch {
	batches := make([]models.Batch, 0, len(handles))
	for _, h := range handles {
		submitted := h.Submitted
		if submitted.IsZero() {
			submitted = c.now()
		}
		batches = append(batches, models.Batch{
			ID:         h.ID,
			CustomerID: customerID,
			ManifestID: manifestID,
			Status:     models.BatchIngesting,
			Submitted:  submitted.UTC(),
			AssetIDs:   h.Assets,
		})
	}
	return batches
}

// ingestPayload copies the caller's asset and fixes its identity fields. Tagged
// ingestion adds the manifest to the asset's manifests.
func ingestPayload(it disposition.Item, manifestID string) assetservice.Asset {
	out := make(assetservice.Asset, len(it.Asset.Payload)+2)
	for k, v := range it.Asset.Payload {
		out[k] = v
	}
	out["id"] = it.Asset.ID.Asset
	out["space"] = it.Asset.ID.Space

	if it.Ingest == disposition.IngestWithManifestTag {
		out[manifestsField] = withManifest(out[manifestsField], manifestID)
	}
	return out
}

func withManifest(current any, manifestID string) []string {
	var out []string
	switch v := current.(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, m := range v {
			if s, ok := m.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		if v != "" {
			out = append(out, v)
		}
	}
	for _, m := range out {
		if m == manifestID {
			return out
		}
	}
	return append(out, manifestID)
}
