package device

// PackedLayout places every packed array of a variable back to back in one
// contiguous buffer.
// Layout: [Array 0 Data][Array 1 Data]...[Array N-1 Data]
type PackedLayout struct {
	// Array a's data starts at Offsets[a]; Offsets[len(Counts)] is the total
	Offsets []int64
	Counts  []int64
}

// NewPackedLayout builds the layout of arrays
func NewPackedLayout(arrays [][]float64) PackedLayout {
	pl := PackedLayout{
		Offsets: make([]int64, len(arrays)+1),
		Counts:  make([]int64, len(arrays)),
	}
	for a, vals := range arrays {
		pl.Counts[a] = int64(len(vals))
		pl.Offsets[a+1] = pl.Offsets[a] + int64(len(vals))
	}
	return pl
}

// Total returns the number of values across all arrays
func (pl PackedLayout) Total() int64 {
	if len(pl.Offsets) == 0 {
		return 0
	}
	return pl.Offsets[len(pl.Offsets)-1]
}

// NumArrays returns the number of arrays in the layout
func (pl PackedLayout) NumArrays() int {
	return len(pl.Counts)
}

// ArrayData returns the slice of flat holding array a
func (pl PackedLayout) ArrayData(flat []float64, a int) []float64 {
	if a < 0 || a >= len(pl.Counts) {
		return nil
	}
	return flat[pl.Offsets[a]:pl.Offsets[a+1]]
}

// Flatten copies arrays into one buffer following the layout
func (pl PackedLayout) Flatten(arrays [][]float64) []float64 {
	flat := make([]float64, pl.Total())
	for a, vals := range arrays {
		copy(pl.ArrayData(flat, a), vals)
	}
	return flat
}

// FlatIndex returns the position of (array, value) in the flat buffer
func (pl PackedLayout) FlatIndex(array, value int32) int64 {
	return pl.Offsets[array] + int64(value)
}

// Same reports whether pl and other describe the same array sizes
func (pl PackedLayout) Same(other PackedLayout) bool {
	if len(pl.Counts) != len(other.Counts) {
		return false
	}
	for a := range pl.Counts {
		if pl.Counts[a] != other.Counts[a] {
			return false
		}
	}
	return true
}
