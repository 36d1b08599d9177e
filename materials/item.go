package materials

import (
	"fmt"

	"github.com/notargets/DGMaterials/mesh"
)

// ComponentItem is the generic view over one cell's participation in a
// component. MatItem, EnvItem and CellItem all satisfy it, so algorithms can
// work on mixed collections once the specific kind no longer matters.
//
// A view observes the live record: Index() reflects relocations done by
// later removals. Do not hold on to a view across a Remove of the same cell
// and component; dereferencing a destroyed record panics.
type ComponentItem interface {
	GlobalCell() mesh.GlobalCell
	Index() MatVarIndex
	Component() ComponentID
}

// itemRef is a generation-checked handle on a record of a store
type itemRef struct {
	store *componentStore
	id    int32
	gen   uint32
}

func (r itemRef) record() *componentItemRecord {
	if r.store == nil {
		panic(&InvalidReferenceError{Component: GlobalComponent, Record: -1})
	}
	rec := &r.store.records[r.id]
	if !rec.alive || rec.gen != r.gen {
		panic(&InvalidReferenceError{Component: r.store.ID, Record: r.id})
	}
	return rec
}

func (r itemRef) valid() bool {
	if r.store == nil {
		return false
	}
	rec := &r.store.records[r.id]
	return rec.alive && rec.gen == r.gen
}

// MatItem is the view of a cell for one material
type MatItem struct {
	ref itemRef
}

func (it MatItem) GlobalCell() mesh.GlobalCell { return it.ref.record().cell }
func (it MatItem) Index() MatVarIndex          { return it.ref.record().index }
func (it MatItem) Component() ComponentID      { return it.Material() }

// Valid reports whether the underlying record is still alive
func (it MatItem) Valid() bool { return it.ref.valid() }

// Material returns the material this item belongs to
func (it MatItem) Material() ComponentID {
	if it.ref.store == nil {
		return GlobalComponent
	}
	return it.ref.store.ID
}

// EnvItem returns the environment item of the same cell. It is always
// present while the material item is alive.
func (it MatItem) EnvItem() EnvItem {
	cell := it.GlobalCell()
	env := it.ref.store.owner.stores[it.ref.store.Environment]
	return EnvItem{ref: env.ref(env.byCell[cell])}
}

// CellItem returns the whole-cell item of the same cell
func (it MatItem) CellItem() CellItem {
	return it.ref.store.owner.cellItem(it.GlobalCell())
}

func (it MatItem) String() string {
	return fmt.Sprintf("MatItem{%s mat=%d idx=%s}", it.GlobalCell(), it.Material(), it.Index())
}

// EnvItem is the view of a cell for one environment
type EnvItem struct {
	ref itemRef
}

func (it EnvItem) GlobalCell() mesh.GlobalCell { return it.ref.record().cell }
func (it EnvItem) Index() MatVarIndex          { return it.ref.record().index }
func (it EnvItem) Component() ComponentID      { return it.Environment() }
func (it EnvItem) Valid() bool                 { return it.ref.valid() }

// Environment returns the environment this item belongs to
func (it EnvItem) Environment() ComponentID {
	if it.ref.store == nil {
		return GlobalComponent
	}
	return it.ref.store.ID
}

// MatItems returns the items of the environment's materials present in the
// cell, in material declaration order
func (it EnvItem) MatItems() []MatItem {
	cell := it.GlobalCell()
	m := it.ref.store.owner
	var items []MatItem
	for _, mat := range it.ref.store.Materials {
		ms := m.stores[mat]
		if rid, ok := ms.byCell[cell]; ok {
			items = append(items, MatItem{ref: ms.ref(rid)})
		}
	}
	return items
}

// NbMaterial returns the number of the environment's materials in the cell
func (it EnvItem) NbMaterial() int {
	cell := it.GlobalCell()
	m := it.ref.store.owner
	n := 0
	for _, mat := range it.ref.store.Materials {
		if m.stores[mat].has(cell) {
			n++
		}
	}
	return n
}

func (it EnvItem) String() string {
	return fmt.Sprintf("EnvItem{%s env=%d idx=%s}", it.GlobalCell(), it.Environment(), it.Index())
}

// CellItem is the whole-cell view, always present for every mesh cell.
// Its index addresses the global array.
type CellItem struct {
	ref itemRef
}

func (it CellItem) GlobalCell() mesh.GlobalCell { return it.ref.record().cell }
func (it CellItem) Index() MatVarIndex          { return it.ref.record().index }
func (it CellItem) Component() ComponentID      { return GlobalComponent }
func (it CellItem) Valid() bool                 { return it.ref.valid() }

func (it CellItem) String() string {
	return fmt.Sprintf("CellItem{%s idx=%s}", it.GlobalCell(), it.Index())
}
