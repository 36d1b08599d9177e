package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackedLayout(t *testing.T) {
	arrays := [][]float64{
		{1, 2, 3},
		{},
		{4, 5},
	}
	pl := NewPackedLayout(arrays)

	assert.Equal(t, []int64{0, 3, 3, 5}, pl.Offsets)
	assert.Equal(t, []int64{3, 0, 2}, pl.Counts)
	assert.Equal(t, int64(5), pl.Total())
	assert.Equal(t, 3, pl.NumArrays())

	flat := pl.Flatten(arrays)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, flat)
	assert.Equal(t, []float64{4, 5}, pl.ArrayData(flat, 2))
	assert.Empty(t, pl.ArrayData(flat, 1))
	assert.Nil(t, pl.ArrayData(flat, 3))
	assert.Equal(t, int64(4), pl.FlatIndex(2, 1))

	assert.True(t, pl.Same(NewPackedLayout([][]float64{{0, 0, 0}, nil, {0, 0}})))
	assert.False(t, pl.Same(NewPackedLayout([][]float64{{0, 0, 0}, {0}, {0, 0}})))
	assert.False(t, pl.Same(NewPackedLayout(arrays[:2])))

	assert.Equal(t, int64(0), PackedLayout{}.Total())
}
