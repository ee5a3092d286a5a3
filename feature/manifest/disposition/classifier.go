package disposition

import (
	"context"
	"fmt"
	"sync"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/assetservice"
	"iiif-presentation/core/utils"
	"iiif-presentation/feature/manifest/canvas"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize bounds the number of asset ids in one ownership query.
const DefaultChunkSize = 500

const maxConcurrentLookups = 4

// OwnershipLookup finds the manifests painting each asset.
type OwnershipLookup interface {
	FindAssetOwners(ctx context.Context, customerID int, assetIDs []string) (map[string][]string, error)
}

// Request is one classification run.
type Request struct {
	CustomerID int
	ManifestID string
	// NewSpace is the space created for this request, nil when none was created.
	NewSpace *int
	Assets   []*canvas.AssetRef
}

// Item is the decision for one asset.
type Item struct {
	Asset *canvas.AssetRef
	Facts Facts
	Decision
}

// Summary counts decisions.
type Summary struct {
	Total         int                 `json:"total"`
	Ingest        int                 `json:"ingest"`
	Patch         int                 `json:"patch"`
	ByDisposition map[Disposition]int `json:"by_disposition"`
}

// Plan is the complete classification of a request.
type Plan struct {
	Items   []Item
	Summary Summary
}

// ToIngest returns the items that must be submitted for ingestion.
func (p *Plan) ToIngest() []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Ingest != NoIngest {
			out = append(out, it)
		}
	}
	return out
}

// ToPatch returns the asset ids whose manifest association must be extended.
func (p *Plan) ToPatch() []string {
	var out []string
	for _, it := range p.Items {
		if it.Patch {
			out = append(out, it.Asset.ID.String())
		}
	}
	return out
}

// Classifier gathers facts for every asset and decides its disposition.
type Classifier struct {
	owners    OwnershipLookup
	assets    assetservice.Client
	logger    *zap.Logger
	chunkSize int
}

// NewClassifier creates a classifier.
func NewClassifier(owners OwnershipLookup, assets assetservice.Client, logger *zap.Logger) *Classifier {
	return &Classifier{owners: owners, assets: assets, logger: logger, chunkSize: DefaultChunkSize}
}

// Classify decides every asset of the request. It fails as a whole when any lookup fails.
func (c *Classifier) Classify(ctx context.Context, req Request) (*Plan, error) {
	plan := &Plan{Summary: Summary{ByDisposition: make(map[Disposition]int)}}
	if len(req.Assets) == 0 {
		return plan, nil
	}

	ids := make([]string, 0, len(req.Assets))
	for _, a := range req.Assets {
		if a.NeedsSpace {
			return nil, apperr.Unexpected(fmt.Errorf("asset %s has no space", a.ID.Asset))
		}
		ids = append(ids, a.ID.String())
	}

	owners, err := c.lookupOwners(ctx, req.CustomerID, ids)
	if err != nil {
		return nil, err
	}

	facts := make([]Facts, len(req.Assets))
	var unresolved []string
	for i, a := range req.Assets {
		f := Facts{Reingest: a.Reingest}
		f.NewSpaceMatches = req.NewSpace != nil && a.ID.Space == *req.NewSpace
		for _, m := range owners[ids[i]] {
			if m == req.ManifestID {
				f.OwnedBySameManifest = true
			} else {
				f.OwnedByOtherManifest = true
			}
		}
		if f.NeedsExistenceLookup() {
			unresolved = append(unresolved, ids[i])
		}
		facts[i] = f
	}

	if len(unresolved) > 0 {
		known, err := c.assets.BulkExistenceLookup(ctx, req.CustomerID, unresolved)
		if err != nil {
			return nil, apperr.FromExternal("bulk existence lookup", err)
		}
		for i := range facts {
			if _, ok := known[ids[i]]; ok && facts[i].NeedsExistenceLookup() {
				facts[i].KnownExternally = true
			}
		}
	}

	for i, a := range req.Assets {
		d := Decide(facts[i])
		plan.Items = append(plan.Items, Item{Asset: a, Facts: facts[i], Decision: d})
		plan.Summary.Total++
		plan.Summary.ByDisposition[d.Disposition]++
		if d.Ingest != NoIngest {
			plan.Summary.Ingest++
		}
		if d.Patch {
			plan.Summary.Patch++
		}
	}

	c.logger.Debug("Classified assets",
		zap.Int("customer_id", req.CustomerID),
		zap.String("manifest_id", req.ManifestID),
		zap.Int("total", plan.Summary.Total),
		zap.Int("ingest", plan.Summary.Ingest),
		zap.Int("patch", plan.Summary.Patch),
		zap.Int("existence_lookups", len(unresolved)))

	return plan, nil
}

// lookupOwners queries ownership in chunks, concurrently.
func (c *Classifier) lookupOwners(ctx context.Context, customerID int, ids []string) (map[string][]string, error) {
	owners := make(map[string][]string)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for _, chunk := range utils.Chunk(ids, c.chunkSize) {
		chunk := chunk
		g.Go(func() error {
			found, err := c.owners.FindAssetOwners(gctx, customerID, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for id, manifests := range found {
				owners[id] = append(owners[id], manifests...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("lookup asset owners: %w", err))
	}
	return owners, nil
}
