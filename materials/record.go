package materials

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/notargets/DGMaterials/mesh"
)

// componentItemRecord is the owned record behind every component item
type componentItemRecord struct {
	cell  mesh.GlobalCell
	index MatVarIndex
	gen   uint32 // Bumped on destruction so stale views are detected
	alive bool
}

// relocation describes the record moved by a swap-with-last removal
type relocation struct {
	cell     mesh.GlobalCell
	from, to int32
	moved    bool
}

// componentStore holds the records of one component. Records live in an
// arena and are addressed by record id; dense maps slot -> record id and is
// kept hole free.
type componentStore struct {
	owner *Manager
	ComponentInfo

	// mu guards this store and, for an environment, the stores of all its
	// materials. Material stores never lock their own mu.
	mu sync.Mutex

	records  []componentItemRecord
	free     []int32
	dense    []int32
	byCell   map[mesh.GlobalCell]int32
	presence *roaring.Bitmap // Local ids of the cells holding this component
}

func newComponentStore(owner *Manager, info ComponentInfo) *componentStore {
	return &componentStore{
		owner:         owner,
		ComponentInfo: info,
		byCell:        make(map[mesh.GlobalCell]int32),
		presence:      roaring.New(),
	}
}

func (s *componentStore) count() int {
	return len(s.dense)
}

func (s *componentStore) has(cell mesh.GlobalCell) bool {
	_, ok := s.byCell[cell]
	return ok
}

// insert appends a record for cell at the end of the packed array
func (s *componentStore) insert(cell mesh.GlobalCell) int32 {
	slot := int32(len(s.dense))

	var rid int32
	if n := len(s.free); n > 0 {
		rid = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		rid = int32(len(s.records))
		s.records = append(s.records, componentItemRecord{})
	}

	rec := &s.records[rid]
	rec.cell = cell
	rec.index = NewMatVarIndex(int32(s.ID), slot)
	rec.alive = true

	s.dense = append(s.dense, rid)
	s.byCell[cell] = rid
	s.presence.Add(uint32(cell.LocalID()))
	return rid
}

// remove destroys the record of cell. The record in the last slot takes the
// freed slot so that slots stay in [0, count).
func (s *componentStore) remove(cell mesh.GlobalCell) (slot int32, rel relocation) {
	rid := s.byCell[cell]
	rec := &s.records[rid]
	slot = rec.index.valueIndex

	last := int32(len(s.dense) - 1)
	if slot != last {
		lastRid := s.dense[last]
		s.dense[slot] = lastRid
		moved := &s.records[lastRid]
		moved.index.valueIndex = slot
		rel = relocation{cell: moved.cell, from: last, to: slot, moved: true}
	}
	s.dense = s.dense[:last]

	delete(s.byCell, cell)
	s.presence.Remove(uint32(cell.LocalID()))

	rec.alive = false
	rec.gen++
	rec.cell = mesh.NullCell
	rec.index = AbsentIndex
	s.free = append(s.free, rid)
	return slot, rel
}

// reorder rewrites dense so that slot i holds the record formerly at
// order[i]. It returns the number of records whose slot changed.
func (s *componentStore) reorder(order []int32) int {
	dense := make([]int32, len(order))
	changed := 0
	for newSlot, oldSlot := range order {
		rid := s.dense[oldSlot]
		dense[newSlot] = rid
		if int32(newSlot) != oldSlot {
			s.records[rid].index.valueIndex = int32(newSlot)
			changed++
		}
	}
	s.dense = dense
	return changed
}

// ref returns a handle on the live record rid
func (s *componentStore) ref(rid int32) itemRef {
	return itemRef{store: s, id: rid, gen: s.records[rid].gen}
}

// item wraps record rid in the view type matching the component kind
func (s *componentStore) item(rid int32) ComponentItem {
	r := s.ref(rid)
	switch s.Kind {
	case KindMaterial:
		return MatItem{ref: r}
	case KindEnvironment:
		return EnvItem{ref: r}
	default:
		return CellItem{ref: r}
	}
}
