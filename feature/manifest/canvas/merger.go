package canvas

// Merge interleaves item-derived canvases with asset-derived canvases.
//
// Asset canvas orders act as checkpoints. Before placing the asset canvas at
// checkpoint C, every queued item canvas whose original order is below C is emitted,
// renumbered so the run ends at C-1 but never before the current cursor. The asset
// canvas then takes max(C, cursor). Remaining item canvases follow the last asset canvas.
// Choice orders inside each canvas are untouched.
func Merge(items, assets []Descriptor) []Descriptor {
	itemGroups := groupByOrder(items)
	assetGroups := groupByOrder(assets)

	out := make([]Descriptor, 0, len(items)+len(assets))
	emit := func(g group, order int) {
		for _, d := range g.members {
			d.CanvasOrder = order
			out = append(out, d)
		}
	}

	cursor, next := 0, 0
	for _, ag := range assetGroups {
		checkpoint := ag.order

		end := next
		for end < len(itemGroups) && itemGroups[end].order < checkpoint {
			end++
		}
		if pending := end - next; pending > 0 {
			start := checkpoint - pending
			if start < cursor {
				start = cursor
			}
			for i := next; i < end; i++ {
				emit(itemGroups[i], start+i-next)
			}
			cursor = start + pending
			next = end
		}

		at := checkpoint
		if at < cursor {
			at = cursor
		}
		emit(ag, at)
		cursor = at + 1
	}

	for ; next < len(itemGroups); next++ {
		emit(itemGroups[next], cursor)
		cursor++
	}
	return out
}
