package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func labelled(order int, label string) Descriptor {
	return Descriptor{CanvasOrder: order, Label: label}
}

func orderOf(ds []Descriptor) map[string]int {
	out := make(map[string]int, len(ds))
	for _, d := range ds {
		out[d.Label] = d.CanvasOrder
	}
	return out
}

func labelsOf(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Label)
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Run("items fill gaps before checkpoints", func(t *testing.T) {
		items := []Descriptor{labelled(0, "i0"), labelled(1, "i1"), labelled(2, "i2")}
		assets := []Descriptor{labelled(1, "a1"), labelled(4, "a4")}

		got := Merge(items, assets)

		assert.Equal(t, []string{"i0", "a1", "i1", "i2", "a4"}, labelsOf(got))
		assert.Equal(t, map[string]int{"i0": 0, "a1": 1, "i1": 2, "i2": 3, "a4": 4}, orderOf(got))
	})

	t.Run("remaining items follow the last checkpoint", func(t *testing.T) {
		items := []Descriptor{labelled(0, "i0"), labelled(1, "i1")}
		assets := []Descriptor{labelled(0, "a0")}

		got := Merge(items, assets)

		assert.Equal(t, []string{"a0", "i0", "i1"}, labelsOf(got))
		assert.Equal(t, map[string]int{"a0": 0, "i0": 1, "i1": 2}, orderOf(got))
	})

	t.Run("crowded checkpoint moves forward", func(t *testing.T) {
		items := []Descriptor{labelled(0, "i0"), labelled(1, "i1"), labelled(2, "i2")}
		assets := []Descriptor{labelled(3, "a3"), labelled(3, "a3b")}
		assets[0].ChoiceOrder = intPtr(1)
		assets[1].ChoiceOrder = intPtr(2)

		got := Merge(items, assets)

		assert.Equal(t, []string{"i0", "i1", "i2", "a3", "a3b"}, labelsOf(got))
		assert.Equal(t, 3, got[3].CanvasOrder)
		assert.Equal(t, 3, got[4].CanvasOrder)
		assert.Equal(t, 2, *got[4].ChoiceOrder)
	})

	t.Run("item runs never overlap an earlier checkpoint", func(t *testing.T) {
		items := []Descriptor{labelled(0, "i0"), labelled(1, "i1"), labelled(2, "i2")}
		assets := []Descriptor{labelled(0, "a0"), labelled(2, "a2")}

		got := Merge(items, assets)

		assert.Equal(t, []string{"a0", "i0", "i1", "a2", "i2"}, labelsOf(got))
		assert.Equal(t, map[string]int{"a0": 0, "i0": 1, "i1": 2, "a2": 3, "i2": 4}, orderOf(got))
	})

	t.Run("no assets keeps items", func(t *testing.T) {
		items := []Descriptor{labelled(0, "i0"), labelled(1, "i1")}
		assert.Equal(t, []string{"i0", "i1"}, labelsOf(Merge(items, nil)))
	})
}
