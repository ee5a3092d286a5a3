package canvas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/identity"
	"iiif-presentation/feature/manifest/models"
)

// Input is everything needed to resolve the canvas paintings of one manifest.
type Input struct {
	CustomerID int
	ManifestID string
	// SpaceID is the manifest's persisted space, if any.
	SpaceID  *int
	Request  models.ManifestRequest
	Existing []models.CanvasPainting
	Actor    string
	Now      time.Time
}

// Resolver turns a declarative manifest into a canvas painting plan.
type Resolver struct {
	ids    identity.Generator
	parser IDParser
}

// NewResolver creates a resolver drawing fresh canvas ids from ids.
func NewResolver(ids identity.Generator, parser IDParser) *Resolver {
	return &Resolver{ids: ids, parser: parser}
}

// Describe selects the source and produces normalised descriptors without touching storage.
func (r *Resolver) Describe(in Input) (SourceKind, []Descriptor, error) {
	src := SelectSource(in.Request)

	var (
		ds  []Descriptor
		err error
	)
	switch {
	case src.Kind == WithAsset:
		ds, err = fromPaintedResources(r.parser, in.CustomerID, in.SpaceID, src.PaintedResources)
		if err != nil {
			return src.Kind, nil, err
		}
		if ds, err = normalizeChoices(ds); err != nil {
			return src.Kind, nil, err
		}
		if src.Merges() {
			items, err := fromItems(r.parser, in.CustomerID, src.Items)
			if err != nil {
				return src.Kind, nil, err
			}
			ds = Merge(items, ds)
		}
	case len(src.Items) > 0:
		if ds, err = fromItems(r.parser, in.CustomerID, src.Items); err != nil {
			return src.Kind, nil, err
		}
		if ds, err = normalizeChoices(ds); err != nil {
			return src.Kind, nil, err
		}
	default:
		if ds, err = fromPaintedResources(r.parser, in.CustomerID, in.SpaceID, src.PaintedResources); err != nil {
			return src.Kind, nil, err
		}
		if ds, err = normalizeChoices(ds); err != nil {
			return src.Kind, nil, err
		}
	}

	if _, err := validateCanvasIDs(ds); err != nil {
		return src.Kind, nil, err
	}
	return src.Kind, ds, nil
}

// Resolve builds the plan. With no existing rows every descriptor becomes an insert;
// otherwise descriptors are matched to existing rows, which keep their row id and,
// where possible, their canvas id.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*Plan, error) {
	kind, ds, err := r.Describe(in)
	if err != nil {
		return nil, err
	}

	existing := make([]*models.CanvasPainting, len(in.Existing))
	for i := range in.Existing {
		row := in.Existing[i]
		existing[i] = &row
	}
	idx := newRowIndex(existing)

	matched := make([]*models.CanvasPainting, len(ds))
	for i, d := range ds {
		matched[i] = idx.match(d)
	}

	canvasIDs, err := r.assignCanvasIDs(ctx, in.CustomerID, ds, matched)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Source: kind}
	orders := make(map[int]struct{})
	for i, d := range ds {
		row := matched[i]
		isExisting := row != nil
		if isExisting {
			row.Modified = in.Now
			row.ModifiedBy = in.Actor
			plan.Summary.Updates++
		} else {
			row = &models.CanvasPainting{
				CustomerID: in.CustomerID,
				ManifestID: in.ManifestID,
				Created:    in.Now,
				Modified:   in.Now,
				CreatedBy:  in.Actor,
				ModifiedBy: in.Actor,
			}
			plan.Summary.Inserts++
		}

		row.CanvasID = canvasIDs[d.CanvasOrder]
		row.CanvasOrder = d.CanvasOrder
		row.ChoiceOrder = d.ChoiceOrder
		row.Label = strPtr(d.Label)
		row.CanvasLabel = strPtr(d.CanvasLabel)
		row.CanvasOriginalID = strPtr(d.CanvasOriginalID)
		row.StaticWidth = d.StaticWidth
		row.StaticHeight = d.StaticHeight
		row.AssetID = nil
		if d.Asset != nil && !d.Asset.NeedsSpace {
			row.AssetID = models.AssetIDPtr(d.Asset.ID)
		}
		if d.Asset == nil {
			row.Ingesting = false
		}

		plan.Entries = append(plan.Entries, Entry{Row: row, Asset: d.Asset, Existing: isExisting})
		orders[d.CanvasOrder] = struct{}{}
	}

	for _, row := range idx.unclaimed() {
		plan.Deletes = append(plan.Deletes, *row)
	}
	plan.Summary.Deletes = len(plan.Deletes)
	plan.Summary.Canvases = len(orders)
	return plan, nil
}

// assignCanvasIDs picks one canvas id per canvas order: the explicit id, else the id of
// the first matched row not claimed by an earlier canvas, else a fresh id.
func (r *Resolver) assignCanvasIDs(ctx context.Context, customerID int, ds []Descriptor, matched []*models.CanvasPainting) (map[int]string, error) {
	explicit, err := validateCanvasIDs(ds)
	if err != nil {
		return nil, err
	}

	reserved := make(map[string]struct{}, len(explicit))
	for _, id := range explicit {
		reserved[id] = struct{}{}
	}

	assigned := make(map[int]string)
	var pending []int
	for i, d := range ds {
		if _, done := assigned[d.CanvasOrder]; done {
			continue
		}
		if id, ok := explicit[d.CanvasOrder]; ok {
			assigned[d.CanvasOrder] = id
			continue
		}

		id := ""
		for j := i; j < len(ds) && ds[j].CanvasOrder == d.CanvasOrder; j++ {
			row := matched[j]
			if row == nil {
				continue
			}
			if _, taken := reserved[row.CanvasID]; taken {
				continue
			}
			id = row.CanvasID
			break
		}
		if id == "" {
			pending = append(pending, d.CanvasOrder)
			assigned[d.CanvasOrder] = ""
			continue
		}
		reserved[id] = struct{}{}
		assigned[d.CanvasOrder] = id
	}

	if len(pending) == 0 {
		return assigned, nil
	}

	fresh, err := r.ids.GenerateUniqueIds(ctx, customerID, len(pending))
	if err != nil {
		if errors.Is(err, identity.ErrIdentityExhausted) {
			return nil, apperr.Exhausted(apperr.CodeCannotGenerateUniqueID, err)
		}
		return nil, apperr.Unexpected(fmt.Errorf("generate canvas ids: %w", err))
	}
	if len(fresh) < len(pending) {
		return nil, apperr.Exhausted(apperr.CodeCannotGenerateUniqueID,
			fmt.Errorf("requested %d canvas ids, got %d", len(pending), len(fresh)))
	}
	for i, order := range pending {
		assigned[order] = fresh[i]
	}
	return assigned, nil
}

// rowIndex looks up existing rows by the identity an incoming descriptor carries.
type rowIndex struct {
	rows       []*models.CanvasPainting
	byAsset    map[string]*models.CanvasPainting
	byOriginal map[string][]*models.CanvasPainting
	byCanvas   map[string][]*models.CanvasPainting
	byPosition map[int][]*models.CanvasPainting
	claimed    map[*models.CanvasPainting]bool
}

func newRowIndex(rows []*models.CanvasPainting) *rowIndex {
	idx := &rowIndex{
		rows:       rows,
		byAsset:    make(map[string]*models.CanvasPainting),
		byOriginal: make(map[string][]*models.CanvasPainting),
		byCanvas:   make(map[string][]*models.CanvasPainting),
		byPosition: make(map[int][]*models.CanvasPainting),
		claimed:    make(map[*models.CanvasPainting]bool),
	}
	for _, row := range rows {
		switch {
		case row.AssetID != nil:
			idx.byAsset[*row.AssetID] = row
		case row.CanvasOriginalID != nil:
			idx.byOriginal[*row.CanvasOriginalID] = append(idx.byOriginal[*row.CanvasOriginalID], row)
		default:
			idx.byPosition[row.CanvasOrder] = append(idx.byPosition[row.CanvasOrder], row)
		}
		if row.AssetID == nil {
			idx.byCanvas[row.CanvasID] = append(idx.byCanvas[row.CanvasID], row)
		}
	}
	return idx
}

func (idx *rowIndex) claim(row *models.CanvasPainting) *models.CanvasPainting {
	if row == nil || idx.claimed[row] {
		return nil
	}
	idx.claimed[row] = true
	return row
}

// pick chooses among rows sharing an identity: a lone row matches regardless of
// choice order, otherwise the choice order must agree. A descriptor without a choice
// order takes the first unclaimed row, so a group collapsed to one painting keeps it.
func (idx *rowIndex) pick(cands []*models.CanvasPainting, choice *int) *models.CanvasPainting {
	if len(cands) == 1 {
		return idx.claim(cands[0])
	}
	for _, c := range cands {
		if sameChoice(c.ChoiceOrder, choice) && !idx.claimed[c] {
			return idx.claim(c)
		}
	}
	if choice == nil {
		for _, c := range cands {
			if !idx.claimed[c] {
				return idx.claim(c)
			}
		}
	}
	return nil
}

func (idx *rowIndex) match(d Descriptor) *models.CanvasPainting {
	if d.Asset != nil {
		if d.Asset.NeedsSpace {
			return nil
		}
		return idx.claim(idx.byAsset[d.Asset.ID.String()])
	}
	if d.CanvasOriginalID != "" {
		return idx.pick(idx.byOriginal[d.CanvasOriginalID], d.ChoiceOrder)
	}
	if d.CanvasID != "" {
		return idx.pick(idx.byCanvas[d.CanvasID], d.ChoiceOrder)
	}
	return idx.pick(idx.byPosition[d.CanvasOrder], d.ChoiceOrder)
}

func (idx *rowIndex) unclaimed() []*models.CanvasPainting {
	var out []*models.CanvasPainting
	for _, row := range idx.rows {
		if !idx.claimed[row] {
			out = append(out, row)
		}
	}
	return out
}
