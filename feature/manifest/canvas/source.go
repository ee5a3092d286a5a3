package canvas

import "iiif-presentation/feature/manifest/models"

// SourceKind tells which input shape drives canvas resolution.
type SourceKind int

const (
	// StructuralOnly resolves from items, or from painted resources that carry no asset.
	StructuralOnly SourceKind = iota
	// WithAsset resolves from painted resources, merging items in when present.
	WithAsset
)

func (k SourceKind) String() string {
	if k == WithAsset {
		return "with-asset"
	}
	return "structural-only"
}

// Source is the selected input for one request.
type Source struct {
	Kind             SourceKind
	Items            []models.CanvasItem
	PaintedResources []models.PaintedResource
}

// SelectSource picks the source variant. Any asset on a painted resource makes it WithAsset.
func SelectSource(req models.ManifestRequest) Source {
	src := Source{Items: req.Items, PaintedResources: req.PaintedResources}
	if req.HasAssets() {
		src.Kind = WithAsset
	}
	return src
}

// Merges reports whether the item structure and the painted resources are combined.
func (s Source) Merges() bool {
	return s.Kind == WithAsset && len(s.Items) > 0
}
