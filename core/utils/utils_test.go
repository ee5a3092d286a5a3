package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"Int", 5, 5, true},
		{"Float", float64(12), 12, true},
		{"FractionalFloat", 1.5, 0, false},
		{"String", " 7 ", 7, true},
		{"BadString", "seven", 0, false},
		{"JSONNumber", json.Number("9"), 9, true},
		{"Nil", nil, 0, false},
		{"Bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInt(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "12", ToString(float64(12)))
	assert.Equal(t, "3", ToString(3))
}

func TestChunk(t *testing.T) {
	items := make([]int, 1001)
	chunks := Chunk(items, 500)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[2], 1)

	assert.Nil(t, Chunk([]int{}, 500))
	assert.Nil(t, Chunk([]int{1}, 0))
}
