package models

// CanvasPaintingInput is the caller's canvas descriptor for a painted resource.
type CanvasPaintingInput struct {
	// CanvasID is an explicit canvas id, either bare or as a canvas URI.
	CanvasID         string `json:"canvasId,omitempty"`
	CanvasOrder      *int   `json:"canvasOrder,omitempty"`
	ChoiceOrder      *int   `json:"choiceOrder,omitempty"`
	Label            string `json:"label,omitempty"`
	CanvasLabel      string `json:"canvasLabel,omitempty"`
	CanvasOriginalID string `json:"canvasOriginalId,omitempty"`
	StaticWidth      *int   `json:"staticWidth,omitempty"`
	StaticHeight     *int   `json:"staticHeight,omitempty"`
}

// AssetPayload is the opaque asset object. Only "id" and "space" are interpreted;
// the rest is forwarded to the asset service as is.
type AssetPayload map[string]any

// PaintedResource pairs an optional canvas descriptor with an optional asset.
type PaintedResource struct {
	CanvasPainting *CanvasPaintingInput `json:"canvasPainting,omitempty"`
	Asset          AssetPayload         `json:"asset,omitempty"`
	Reingest       bool                 `json:"reingest,omitempty"`
}

// ItemPainting is one painting annotation of a canvas in the generic item structure.
type ItemPainting struct {
	Label  string `json:"label,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// CanvasItem is one canvas of the generic item structure, already in display order.
type CanvasItem struct {
	// ID is the canvas URI as written by the caller.
	ID        string         `json:"id"`
	Label     string         `json:"label,omitempty"`
	Width     *int           `json:"width,omitempty"`
	Height    *int           `json:"height,omitempty"`
	Paintings []ItemPainting `json:"paintings,omitempty"`
}

// ManifestRequest is the declarative manifest submitted by the caller.
type ManifestRequest struct {
	Label            string            `json:"label,omitempty"`
	Slug             string            `json:"slug,omitempty"`
	Parent           string            `json:"parent,omitempty"`
	Items            []CanvasItem      `json:"items,omitempty"`
	PaintedResources []PaintedResource `json:"paintedResources,omitempty"`
	// CreateSpace asks for a space even when no asset needs one.
	CreateSpace bool `json:"createSpace,omitempty"`
}

// HasAssets reports whether any painted resource carries an asset.
func (r ManifestRequest) HasAssets() bool {
	for _, pr := range r.PaintedResources {
		if len(pr.Asset) > 0 {
			return true
		}
	}
	return false
}
