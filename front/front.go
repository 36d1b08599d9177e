package front

import (
	"context"
	"fmt"
	"math"

	"github.com/notargets/DGMaterials/materials"
	"github.com/notargets/DGMaterials/mesh"
)

// Front is a planar interface normal to x sweeping through a mesh. Cells
// whose centroid lies behind the front hold the Behind material, cells ahead
// hold the Ahead material and cells inside the band of thickness Width
// centred on the front hold both.
type Front struct {
	Manager *materials.Manager
	Cells   *mesh.CellSet
	Ahead   materials.ComponentID
	Behind  materials.ComponentID
	Width   float64

	// Fraction holds the volume fraction of every material item and, in the
	// global array, the burnt fraction of each cell
	Fraction *materials.Variable

	position float64
}

// New creates a front on m. Both materials must be declared in m.
func New(m *materials.Manager, cells *mesh.CellSet, ahead, behind materials.ComponentID, width float64) (*Front, error) {
	for _, id := range []materials.ComponentID{ahead, behind} {
		info, err := m.Info(id)
		if err != nil {
			return nil, err
		}
		if info.Kind != materials.KindMaterial {
			return nil, fmt.Errorf("front component %q: %w", info.Name, materials.ErrNotMaterial)
		}
	}
	if ahead == behind {
		return nil, fmt.Errorf("front needs two distinct materials")
	}
	if width < 0 {
		return nil, fmt.Errorf("invalid front width %g", width)
	}
	return &Front{
		Manager:  m,
		Cells:    cells,
		Ahead:    ahead,
		Behind:   behind,
		Width:    width,
		Fraction: materials.NewVariable(m, "fraction"),
		position: math.Inf(-1),
	}, nil
}

// Position returns the last position the front was advanced to
func (f *Front) Position() float64 {
	return f.position
}

// behindFraction returns the share of a cell centred at x lying behind a
// front at position
func (f *Front) behindFraction(x, position float64) float64 {
	if f.Width == 0 {
		if x < position {
			return 1
		}
		return 0
	}
	half := f.Width / 2
	switch {
	case x <= position-half:
		return 1
	case x >= position+half:
		return 0
	default:
		return (position + half - x) / f.Width
	}
}

// Plan returns the operations that bring the associations in line with a
// front at position
func (f *Front) Plan(position float64) []materials.Op {
	var ops []materials.Op
	for _, c := range f.Cells.Cells {
		ctr, _ := f.Cells.Centroid(c)
		phi := f.behindFraction(ctr[0], position)

		wantBehind := phi > 0
		wantAhead := phi < 1
		ops = f.reconcile(ops, c, f.Behind, wantBehind)
		ops = f.reconcile(ops, c, f.Ahead, wantAhead)
	}
	return ops
}

func (f *Front) reconcile(ops []materials.Op, c mesh.GlobalCell, mat materials.ComponentID, want bool) []materials.Op {
	_, has := f.Manager.FindMat(c, mat)
	switch {
	case want && !has:
		ops = append(ops, materials.Op{Kind: materials.OpInsert, Cell: c, Material: mat})
	case !want && has:
		ops = append(ops, materials.Op{Kind: materials.OpRemove, Cell: c, Material: mat})
	}
	return ops
}

// Advance moves the front to position, applies the resulting inserts and
// removes and refreshes the volume fractions
func (f *Front) Advance(ctx context.Context, position float64) (materials.BatchResult, error) {
	res, err := f.Manager.ApplyBatch(ctx, f.Plan(position))
	if err != nil {
		return res, fmt.Errorf("advance front to %g: %w", position, err)
	}
	f.position = position
	f.updateFractions()
	return res, nil
}

func (f *Front) updateFractions() {
	for _, c := range f.Cells.Cells {
		ctr, _ := f.Cells.Centroid(c)
		phi := f.behindFraction(ctr[0], f.position)

		if ci, err := f.Manager.Cell(c); err == nil {
			f.Fraction.Set(ci, phi)
		}
		if it, ok := f.Manager.FindMat(c, f.Behind); ok {
			f.Fraction.Set(it, phi)
		}
		if it, ok := f.Manager.FindMat(c, f.Ahead); ok {
			f.Fraction.Set(it, 1-phi)
		}
	}
}

// BurntVolume returns the sum of the Behind material fractions
func (f *Front) BurntVolume() float64 {
	return f.Fraction.Sum(f.Behind)
}
