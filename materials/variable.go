package materials

import (
	"fmt"

	"github.com/notargets/DGMaterials/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Variable is a scalar per-component field stored as one packed array per
// component: values[ArrayIndex][ValueIndex]. Array 0 holds the whole-cell
// values. The manager keeps every registered variable in lock-step with its
// records: slots are appended on insert, swapped with the last on remove and
// permuted on compaction.
type Variable struct {
	name   string
	m      *Manager
	values [][]float64
}

// NewVariable creates a zero-valued variable sized to the current
// associations of m and registers it for updates
func NewVariable(m *Manager, name string) *Variable {
	v := &Variable{
		name:   name,
		m:      m,
		values: make([][]float64, len(m.stores)),
	}

	m.varsMu.Lock()
	defer m.varsMu.Unlock()
	for i, s := range m.stores {
		v.values[i] = make([]float64, s.count())
	}
	m.vars = append(m.vars, v)
	return v
}

// Name returns the variable name
func (v *Variable) Name() string {
	return v.name
}

// Release stops the manager from updating v
func (v *Variable) Release() {
	v.m.varsMu.Lock()
	defer v.m.varsMu.Unlock()
	for i, other := range v.m.vars {
		if other == v {
			v.m.vars = append(v.m.vars[:i], v.m.vars[i+1:]...)
			return
		}
	}
}

// Value returns the value stored at mvi. Addressing storage through
// AbsentIndex is a programming error and panics.
func (v *Variable) Value(mvi MatVarIndex) float64 {
	if mvi.IsAbsent() {
		panic(fmt.Sprintf("variable %s: value read through absent index", v.name))
	}
	return v.values[mvi.arrayIndex][mvi.valueIndex]
}

// SetValue stores val at mvi
func (v *Variable) SetValue(mvi MatVarIndex, val float64) {
	if mvi.IsAbsent() {
		panic(fmt.Sprintf("variable %s: value written through absent index", v.name))
	}
	v.values[mvi.arrayIndex][mvi.valueIndex] = val
}

// At returns the value of item it
func (v *Variable) At(it ComponentItem) float64 {
	return v.Value(it.Index())
}

// Set stores val for item it
func (v *Variable) Set(it ComponentItem, val float64) {
	v.SetValue(it.Index(), val)
}

// Value0 returns the whole-cell value of cell
func (v *Variable) Value0(cell mesh.GlobalCell) (float64, error) {
	ci, err := v.m.Cell(cell)
	if err != nil {
		return 0, err
	}
	return v.At(ci), nil
}

// Fill sets every value of component id to val
func (v *Variable) Fill(id ComponentID, val float64) error {
	if _, err := v.m.store(id); err != nil {
		return err
	}
	for i := range v.values[id] {
		v.values[id][i] = val
	}
	return nil
}

// Sum adds up the values of component id
func (v *Variable) Sum(id ComponentID) float64 {
	if id < 0 || int(id) >= len(v.values) {
		return 0
	}
	return floats.Sum(v.values[id])
}

// Values returns the packed array of component id. The slice aliases the
// variable storage and is invalidated by any insert or remove on id.
func (v *Variable) Values(id ComponentID) []float64 {
	if id < 0 || int(id) >= len(v.values) {
		return nil
	}
	return v.values[id]
}

// Vector wraps the packed array of component id without copying, nil when
// the component is present nowhere
func (v *Variable) Vector(id ComponentID) *mat.VecDense {
	vals := v.Values(id)
	if len(vals) == 0 {
		return nil
	}
	return mat.NewVecDense(len(vals), vals)
}

// Arrays returns all packed arrays indexed by array index
func (v *Variable) Arrays() [][]float64 {
	return v.values
}

func (v *Variable) appendSlot(array ComponentID) {
	v.values[array] = append(v.values[array], 0)
}

func (v *Variable) removeSlot(array ComponentID, slot int32) {
	vals := v.values[array]
	last := len(vals) - 1
	vals[slot] = vals[last]
	v.values[array] = vals[:last]
}

func (v *Variable) permute(array ComponentID, order []int32) {
	vals := v.values[array]
	permuted := make([]float64, len(vals))
	for newSlot, oldSlot := range order {
		permuted[newSlot] = vals[oldSlot]
	}
	v.values[array] = permuted
}

func (m *Manager) slotAppended(array ComponentID) {
	m.varsMu.RLock()
	defer m.varsMu.RUnlock()
	for _, v := range m.vars {
		v.appendSlot(array)
	}
}

func (m *Manager) slotRemoved(array ComponentID, slot int32) {
	m.varsMu.RLock()
	defer m.varsMu.RUnlock()
	for _, v := range m.vars {
		v.removeSlot(array, slot)
	}
}

func (m *Manager) slotsPermuted(array ComponentID, order []int32) {
	m.varsMu.RLock()
	defer m.varsMu.RUnlock()
	for _, v := range m.vars {
		v.permute(array, order)
	}
}
