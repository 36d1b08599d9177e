package materials

import (
	"fmt"

	"github.com/notargets/DGMaterials/mesh"
)

// ComponentItemVectorView lists the items of one component in slot order.
// The indexes are captured when the view is built; any later insert or
// remove on the component makes the view stale.
type ComponentItemVectorView struct {
	component ComponentID
	kind      ComponentKind
	indexes   []MatVarIndex
	refs      []itemRef
}

// Items returns the items of component id in slot order
func (m *Manager) Items(id ComponentID) (ComponentItemVectorView, error) {
	s, err := m.store(id)
	if err != nil {
		return ComponentItemVectorView{}, err
	}
	g := m.group(s)
	if g != m.global {
		g.mu.Lock()
		defer g.mu.Unlock()
	}

	view := ComponentItemVectorView{
		component: id,
		kind:      s.Kind,
		indexes:   make([]MatVarIndex, len(s.dense)),
		refs:      make([]itemRef, len(s.dense)),
	}
	for slot, rid := range s.dense {
		view.indexes[slot] = s.records[rid].index
		view.refs[slot] = s.ref(rid)
	}
	return view, nil
}

// NbItem returns the number of items in the view
func (v ComponentItemVectorView) NbItem() int { return len(v.indexes) }

// Component returns the component the view was built for
func (v ComponentItemVectorView) Component() ComponentID { return v.component }

// MatVarIndexes returns the indexes of the items, as captured
func (v ComponentItemVectorView) MatVarIndexes() []MatVarIndex { return v.indexes }

// Item returns a live view on the i-th item
func (v ComponentItemVectorView) Item(i int) ComponentItem {
	r := v.refs[i]
	switch v.kind {
	case KindMaterial:
		return MatItem{ref: r}
	case KindEnvironment:
		return EnvItem{ref: r}
	default:
		return CellItem{ref: r}
	}
}

// Cells returns the cells of the items
func (v ComponentItemVectorView) Cells() []mesh.GlobalCell {
	cells := make([]mesh.GlobalCell, len(v.refs))
	for i, r := range v.refs {
		cells[i] = r.record().cell
	}
	return cells
}

// MatItems returns the items as material views, nil unless the component
// is a material
func (v ComponentItemVectorView) MatItems() []MatItem {
	if v.kind != KindMaterial {
		return nil
	}
	items := make([]MatItem, len(v.refs))
	for i, r := range v.refs {
		items[i] = MatItem{ref: r}
	}
	return items
}

// EnvItems returns the items as environment views, nil unless the
// component is an environment
func (v ComponentItemVectorView) EnvItems() []EnvItem {
	if v.kind != KindEnvironment {
		return nil
	}
	items := make([]EnvItem, len(v.refs))
	for i, r := range v.refs {
		items[i] = EnvItem{ref: r}
	}
	return items
}

// SubView returns the items [begin, begin+size)
func (v ComponentItemVectorView) SubView(begin, size int) (ComponentItemVectorView, error) {
	if begin < 0 || size < 0 || begin+size > len(v.indexes) {
		return ComponentItemVectorView{}, fmt.Errorf("sub view [%d, %d) out of range for %d items",
			begin, begin+size, len(v.indexes))
	}
	return ComponentItemVectorView{
		component: v.component,
		kind:      v.kind,
		indexes:   v.indexes[begin : begin+size],
		refs:      v.refs[begin : begin+size],
	}, nil
}

// AllEnvCell is the whole-cell entry point of the hierarchy: the cell and
// the environments present in it
type AllEnvCell struct {
	cell CellItem
	envs []EnvItem
}

// AllEnvCell returns the environments present in cell, in declaration order
func (m *Manager) AllEnvCell(cell mesh.GlobalCell) (AllEnvCell, error) {
	ci, err := m.Cell(cell)
	if err != nil {
		return AllEnvCell{}, err
	}
	aec := AllEnvCell{cell: ci}
	for _, s := range m.stores[1:] {
		if s.Kind != KindEnvironment {
			continue
		}
		if env, ok := m.FindEnv(cell, s.ID); ok {
			aec.envs = append(aec.envs, env)
		}
	}
	return aec, nil
}

func (a AllEnvCell) GlobalCell() mesh.GlobalCell { return a.cell.GlobalCell() }
func (a AllEnvCell) Cell() CellItem              { return a.cell }
func (a AllEnvCell) NbEnvironment() int          { return len(a.envs) }
func (a AllEnvCell) EnvItems() []EnvItem         { return a.envs }
