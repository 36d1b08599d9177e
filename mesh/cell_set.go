package mesh

import (
	"fmt"

	"github.com/notargets/gocfd/DG3D/mesh/readers"
)

// CellSet is the read-only view of a mesh consumed by the material layer:
// one GlobalCell per element, its centroid and the partition it belongs to.
type CellSet struct {
	Cells     []GlobalCell
	Centroids [][3]float64
	EToP      []int // Length NumCells: cell k belongs to partition EToP[k]
}

// NewLineCellSet builds n cells of equal width along x in [x0, x1]. Useful
// when no mesh file is at hand.
func NewLineCellSet(n int, x0, x1 float64) (*CellSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid cell count: %d", n)
	}
	if x1 <= x0 {
		return nil, fmt.Errorf("invalid extent: [%g, %g]", x0, x1)
	}

	cs := &CellSet{
		Cells:     make([]GlobalCell, n),
		Centroids: make([][3]float64, n),
		EToP:      make([]int, n),
	}
	dx := (x1 - x0) / float64(n)
	for k := 0; k < n; k++ {
		cs.Cells[k] = NewGlobalCell(int32(k), int64(k+1))
		cs.Centroids[k] = [3]float64{x0 + (float64(k)+0.5)*dx, 0, 0}
	}
	return cs, nil
}

// ReadCellSet loads a mesh file (Gambit .neu, Gmsh .msh) and derives
// the cell handles and centroids from its element-to-vertex connectivity.
func ReadCellSet(meshfile string) (*CellSet, error) {
	msh, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh %s: %w", meshfile, err)
	}

	K := msh.NumElements
	if K <= 0 || len(msh.EtoV) < K {
		return nil, fmt.Errorf("mesh %s: inconsistent element count %d (EtoV has %d)",
			meshfile, K, len(msh.EtoV))
	}

	cs := &CellSet{
		Cells:     make([]GlobalCell, K),
		Centroids: make([][3]float64, K),
		EToP:      make([]int, K),
	}
	for k := 0; k < K; k++ {
		cs.Cells[k] = NewGlobalCell(int32(k), int64(k+1))

		// Centroid is the vertex average
		var c [3]float64
		nv := 0
		for _, vi := range msh.EtoV[k] {
			v := msh.Vertices[vi]
			c[0] += v[0]
			c[1] += v[1]
			c[2] += v[2]
			nv++
		}
		if nv > 0 {
			for d := range c {
				c[d] /= float64(nv)
			}
		}
		cs.Centroids[k] = c
	}

	// Unpartitioned meshes leave EToP empty, everything lands in partition 0
	if len(msh.EToP) == K {
		copy(cs.EToP, msh.EToP)
	}

	return cs, nil
}

// NumCells returns the number of cells in the set
func (cs *CellSet) NumCells() int {
	return len(cs.Cells)
}

// Cell returns the handle of the cell at position k
func (cs *CellSet) Cell(k int) GlobalCell {
	if k < 0 || k >= len(cs.Cells) {
		return NullCell
	}
	return cs.Cells[k]
}

// Centroid returns the centroid of c, or false when c is not part of the set
func (cs *CellSet) Centroid(c GlobalCell) ([3]float64, bool) {
	if !cs.Contains(c) {
		return [3]float64{}, false
	}
	return cs.Centroids[c.localID], true
}

// Contains reports whether c is a cell of this set
func (cs *CellSet) Contains(c GlobalCell) bool {
	if c.IsNull() || int(c.localID) >= len(cs.Cells) {
		return false
	}
	return cs.Cells[c.localID] == c
}

// NumPartitions returns the number of distinct partitions referenced by EToP
func (cs *CellSet) NumPartitions() int {
	n := 0
	for _, p := range cs.EToP {
		if p+1 > n {
			n = p + 1
		}
	}
	return n
}
