package mirror

import (
	"iiif-presentation/feature/manifest/canvas"
	"iiif-presentation/feature/manifest/models"
)

// Document is the mirrored representation of a manifest.
type Document struct {
	ID        string      `json:"id"`
	Label     string      `json:"label,omitempty"`
	Slug      string      `json:"slug"`
	Parent    string      `json:"parent,omitempty"`
	Ingesting bool        `json:"ingesting"`
	Canvases  []CanvasDoc `json:"canvases"`
}

// CanvasDoc is one canvas of the representation.
type CanvasDoc struct {
	ID        string        `json:"id"`
	Order     int           `json:"order"`
	Label     string        `json:"label,omitempty"`
	Width     *int          `json:"width,omitempty"`
	Height    *int          `json:"height,omitempty"`
	Paintings []PaintingDoc `json:"paintings"`
}

// PaintingDoc is one painting, or one choice, on a canvas.
type PaintingDoc struct {
	Choice    *int   `json:"choice,omitempty"`
	Label     string `json:"label,omitempty"`
	AssetID   string `json:"assetId,omitempty"`
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`
	Ingesting bool   `json:"ingesting,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Build assembles the representation from rows sorted by canvas and choice order.
// Only labels and static dimensions are used, so the result is also valid while assets ingest.
func Build(p canvas.IDParser, m models.Manifest, rows []*models.CanvasPainting) *Document {
	doc := &Document{
		ID:       p.ManifestURI(m.CustomerID, m.ID),
		Label:    m.Label,
		Slug:     m.Slug,
		Parent:   m.ParentID,
		Canvases: []CanvasDoc{},
	}

	for _, row := range rows {
		n := len(doc.Canvases)
		if n == 0 || doc.Canvases[n-1].Order != row.CanvasOrder {
			doc.Canvases = append(doc.Canvases, CanvasDoc{
				ID:     p.CanvasURI(m.CustomerID, row.CanvasID),
				Order:  row.CanvasOrder,
				Label:  deref(row.CanvasLabel),
				Width:  row.StaticWidth,
				Height: row.StaticHeight,
			})
			n++
		}

		doc.Canvases[n-1].Paintings = append(doc.Canvases[n-1].Paintings, PaintingDoc{
			Choice:    row.ChoiceOrder,
			Label:     deref(row.Label),
			AssetID:   deref(row.AssetID),
			Width:     row.StaticWidth,
			Height:    row.StaticHeight,
			Ingesting: row.Ingesting,
		})
		if row.Ingesting {
			doc.Ingesting = true
		}
	}
	return doc
}
