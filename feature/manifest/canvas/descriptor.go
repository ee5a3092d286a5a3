package canvas

import (
	"sort"
	"strings"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/utils"
	"iiif-presentation/feature/manifest/models"
)

// AssetRef is an asset referenced by the incoming manifest.
type AssetRef struct {
	// ID is the resolved identity. Space is 0 while NeedsSpace is set.
	ID         models.AssetID
	NeedsSpace bool
	Payload    models.AssetPayload
	Reingest   bool
}

// Key returns the identity used to detect duplicates inside one request.
func (a *AssetRef) Key() string {
	if a.NeedsSpace {
		return "?/" + a.ID.Asset
	}
	return a.ID.String()
}

// Descriptor is one incoming canvas painting, independent of which input shape it came from.
type Descriptor struct {
	CanvasID         string
	CanvasOriginalID string
	CanvasOrder      int
	ChoiceOrder      *int
	Label            string
	CanvasLabel      string
	StaticWidth      *int
	StaticHeight     *int
	Asset            *AssetRef
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func choiceValue(c *int) int {
	if c == nil {
		return -1
	}
	return *c
}

func sameChoice(a, b *int) bool {
	return choiceValue(a) == choiceValue(b)
}

// fromItems converts the generic item structure. Canvas order follows item position;
// a canvas with two or more paintings becomes a choice group.
func fromItems(p IDParser, customerID int, items []models.CanvasItem) ([]Descriptor, error) {
	var out []Descriptor
	for i, item := range items {
		canvasID, originalID, err := p.ParseItemID(customerID, item.ID)
		if err != nil {
			return nil, err
		}

		base := Descriptor{
			CanvasID:         canvasID,
			CanvasOriginalID: originalID,
			CanvasOrder:      i,
			CanvasLabel:      item.Label,
			StaticWidth:      item.Width,
			StaticHeight:     item.Height,
		}

		if len(item.Paintings) == 0 {
			out = append(out, base)
			continue
		}
		for j, painting := range item.Paintings {
			d := base
			d.Label = painting.Label
			if painting.Width != nil {
				d.StaticWidth = painting.Width
			}
			if painting.Height != nil {
				d.StaticHeight = painting.Height
			}
			if len(item.Paintings) > 1 {
				d.ChoiceOrder = intPtr(j + 1)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// fromPaintedResources converts painted resources. When none carries a canvas
// descriptor, canvas order follows position; a partial set of descriptors is rejected.
func fromPaintedResources(p IDParser, customerID int, spaceID *int, resources []models.PaintedResource) ([]Descriptor, error) {
	withBlock := 0
	for _, pr := range resources {
		if pr.CanvasPainting != nil {
			withBlock++
		}
	}
	if withBlock > 0 && withBlock < len(resources) {
		return nil, apperr.Validation(apperr.CodeMissingCanvasPaintingBlock,
			"%d of %d painted resources have no canvasPainting", len(resources)-withBlock, len(resources))
	}

	out := make([]Descriptor, 0, len(resources))
	seenAssets := make(map[string]struct{})

	for i, pr := range resources {
		d := Descriptor{CanvasOrder: i}

		if cp := pr.CanvasPainting; cp != nil {
			if cp.CanvasOrder != nil {
				d.CanvasOrder = *cp.CanvasOrder
			}
			d.ChoiceOrder = cp.ChoiceOrder
			d.Label = cp.Label
			d.CanvasLabel = cp.CanvasLabel
			d.CanvasOriginalID = strings.TrimSpace(cp.CanvasOriginalID)
			d.StaticWidth = cp.StaticWidth
			d.StaticHeight = cp.StaticHeight
			if cp.CanvasID != "" {
				id, err := p.ParseExplicit(customerID, cp.CanvasID)
				if err != nil {
					return nil, err
				}
				d.CanvasID = id
			}
		}

		if len(pr.Asset) > 0 {
			ref, err := parseAsset(customerID, spaceID, pr.Asset)
			if err != nil {
				return nil, err
			}
			ref.Reingest = pr.Reingest
			if _, dup := seenAssets[ref.Key()]; dup {
				return nil, apperr.Validation(apperr.CodeDuplicateAssetID, "asset %s is painted more than once", ref.Key())
			}
			seenAssets[ref.Key()] = struct{}{}
			d.Asset = ref
		}

		out = append(out, d)
	}
	return out, nil
}

// parseAsset reads the identity fields of an asset payload. An asset without a space
// takes the manifest's space, or waits for the space created for this request.
func parseAsset(customerID int, spaceID *int, payload models.AssetPayload) (*AssetRef, error) {
	name := strings.TrimSpace(utils.ToString(payload["id"]))
	if name == "" {
		return nil, apperr.Validation(apperr.CodeCouldNotRetrieveAssetID, "asset has no id")
	}

	ref := &AssetRef{
		ID:      models.AssetID{Customer: customerID, Asset: name},
		Payload: payload,
	}

	rawSpace, hasSpace := payload["space"]
	if !hasSpace || rawSpace == nil {
		if spaceID != nil {
			ref.ID.Space = *spaceID
		} else {
			ref.NeedsSpace = true
		}
		return ref, nil
	}

	space, ok := utils.ParseInt(rawSpace)
	if !ok || space <= 0 {
		return nil, apperr.Validation(apperr.CodeCouldNotRetrieveAssetID, "asset %s has invalid space %v", name, rawSpace)
	}
	ref.ID.Space = space
	return ref, nil
}

// group is a run of descriptors sharing one canvas order.
type group struct {
	order   int
	members []Descriptor
}

// groupByOrder sorts descriptors by canvas then choice order and groups them.
func groupByOrder(ds []Descriptor) []group {
	sorted := make([]Descriptor, len(ds))
	copy(sorted, ds)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CanvasOrder != sorted[j].CanvasOrder {
			return sorted[i].CanvasOrder < sorted[j].CanvasOrder
		}
		return choiceValue(sorted[i].ChoiceOrder) < choiceValue(sorted[j].ChoiceOrder)
	})

	var groups []group
	for _, d := range sorted {
		if n := len(groups); n > 0 && groups[n-1].order == d.CanvasOrder {
			groups[n-1].members = append(groups[n-1].members, d)
			continue
		}
		groups = append(groups, group{order: d.CanvasOrder, members: []Descriptor{d}})
	}
	return groups
}

func flatten(groups []group) []Descriptor {
	var out []Descriptor
	for _, g := range groups {
		out = append(out, g.members...)
	}
	return out
}

// normalizeChoices enforces that choice order is present iff a group has two or more
// members, and unique inside the group. Missing choice orders follow the highest given one.
func normalizeChoices(ds []Descriptor) ([]Descriptor, error) {
	byOrder := make(map[int][]int)
	var orders []int
	for i, d := range ds {
		if _, ok := byOrder[d.CanvasOrder]; !ok {
			orders = append(orders, d.CanvasOrder)
		}
		byOrder[d.CanvasOrder] = append(byOrder[d.CanvasOrder], i)
	}

	out := make([]Descriptor, len(ds))
	copy(out, ds)

	for _, order := range orders {
		idx := byOrder[order]
		if len(idx) == 1 {
			out[idx[0]].ChoiceOrder = nil
			continue
		}

		seen := make(map[int]struct{})
		highest := 0
		for _, i := range idx {
			c := out[i].ChoiceOrder
			if c == nil {
				continue
			}
			if _, dup := seen[*c]; dup {
				return nil, apperr.Validation(apperr.CodeDuplicateChoiceOrder,
					"canvas order %d has choice order %d more than once", order, *c)
			}
			seen[*c] = struct{}{}
			if *c > highest {
				highest = *c
			}
		}
		for _, i := range idx {
			if out[i].ChoiceOrder == nil {
				highest++
				out[i].ChoiceOrder = intPtr(highest)
			}
		}
	}

	return flatten(groupByOrder(out)), nil
}

// validateCanvasIDs checks that explicit ids agree within a canvas order and are not
// reused across canvas orders. It returns the explicit id of each canvas order.
func validateCanvasIDs(ds []Descriptor) (map[int]string, error) {
	explicit := make(map[int]string)
	owner := make(map[string]int)

	for _, d := range ds {
		if d.CanvasID == "" {
			continue
		}
		if current, ok := explicit[d.CanvasOrder]; ok && current != d.CanvasID {
			return nil, apperr.Conflict(apperr.CodeCanvasOrderDifferentCanvasID,
				"canvas order %d has canvas ids %q and %q", d.CanvasOrder, current, d.CanvasID)
		}
		if order, ok := owner[d.CanvasID]; ok && order != d.CanvasOrder {
			return nil, apperr.Conflict(apperr.CodeDuplicateCanvasID,
				"canvas id %q is used by canvas orders %d and %d", d.CanvasID, order, d.CanvasOrder)
		}
		explicit[d.CanvasOrder] = d.CanvasID
		owner[d.CanvasID] = d.CanvasOrder
	}
	return explicit, nil
}
