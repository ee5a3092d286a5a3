package canvas

import "iiif-presentation/feature/manifest/models"

// Entry pairs a resolved row with the asset it paints, if any.
type Entry struct {
	Row      *models.CanvasPainting
	Asset    *AssetRef
	Existing bool
}

// Summary counts row-level changes.
type Summary struct {
	Canvases int `json:"canvases"`
	Inserts  int `json:"inserts"`
	Updates  int `json:"updates"`
	Deletes  int `json:"deletes"`
}

// Plan is the complete canvas painting set for a manifest plus the changes against what was stored.
type Plan struct {
	Source  SourceKind
	Entries []Entry
	Deletes []models.CanvasPainting
	Summary Summary
}

// Rows returns the final rows in canvas/choice order.
func (p *Plan) Rows() []*models.CanvasPainting {
	rows := make([]*models.CanvasPainting, 0, len(p.Entries))
	for _, e := range p.Entries {
		rows = append(rows, e.Row)
	}
	return rows
}

// Assets returns the asset references in row order.
func (p *Plan) Assets() []*AssetRef {
	var assets []*AssetRef
	for _, e := range p.Entries {
		if e.Asset != nil {
			assets = append(assets, e.Asset)
		}
	}
	return assets
}

// NeedsSpace reports whether any asset waits for a space to be created.
func (p *Plan) NeedsSpace() bool {
	for _, e := range p.Entries {
		if e.Asset != nil && e.Asset.NeedsSpace {
			return true
		}
	}
	return false
}

// AssignSpace stamps a newly created space onto assets that had none.
func (p *Plan) AssignSpace(spaceID int) {
	for _, e := range p.Entries {
		if e.Asset == nil || !e.Asset.NeedsSpace {
			continue
		}
		e.Asset.ID.Space = spaceID
		e.Asset.NeedsSpace = false
		e.Row.AssetID = models.AssetIDPtr(e.Asset.ID)
	}
}

// Finalize assigns asset ids and ingesting flags once the asset service has been called.
// Rows whose asset was submitted are ingesting; matched rows whose asset was left alone
// keep their previous flag.
func (p *Plan) Finalize(submitted map[string]struct{}) {
	for _, e := range p.Entries {
		if e.Asset == nil {
			e.Row.Ingesting = false
			continue
		}
		id := e.Asset.ID.String()
		e.Row.AssetID = &id
		if _, ok := submitted[id]; ok {
			e.Row.Ingesting = true
		} else if !e.Existing {
			e.Row.Ingesting = false
		}
	}
}

// Ingesting reports whether any row waits for ingestion.
func (p *Plan) Ingesting() bool {
	for _, e := range p.Entries {
		if e.Row.Ingesting {
			return true
		}
	}
	return false
}
