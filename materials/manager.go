package materials

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/notargets/DGMaterials/mesh"
	"github.com/rs/zerolog"
)

// Manager owns the component item records of a mesh and keeps every
// component's packed array dense as materials come and go.
//
// Mutations of one environment and its materials are serialized by the
// environment's lock; distinct environments may be mutated concurrently
// (see ApplyBatch). Views read without locking.
type Manager struct {
	global *componentStore
	stores []*componentStore // Indexed by ComponentID, stores[0] is global
	byName map[string]ComponentID

	varsMu sync.RWMutex
	vars   []*Variable

	log           zerolog.Logger
	sortOnCompact bool
	workers       int
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger, zerolog.Nop() by default
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithSortOnCompact makes Compact reorder slots by ascending cell id
func WithSortOnCompact(sort bool) Option {
	return func(m *Manager) { m.sortOnCompact = sort }
}

// WithWorkers bounds the goroutines used by ApplyBatch
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// NewManager creates a manager for cells, whose order defines the global
// array slots, and the components declared by cfg.
func NewManager(cells []mesh.GlobalCell, cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid materials configuration: %w", err)
	}

	m := &Manager{
		byName:  make(map[string]ComponentID),
		log:     zerolog.Nop(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.global = newComponentStore(m, ComponentInfo{
		ID:   GlobalComponent,
		Name: "global",
		Kind: KindGlobal,
	})
	for _, c := range cells {
		if c.IsNull() {
			return nil, fmt.Errorf("null cell in mesh")
		}
		if m.global.presence.Contains(uint32(c.LocalID())) {
			return nil, fmt.Errorf("cell local id %d appears twice", c.LocalID())
		}
		m.global.insert(c)
	}
	m.stores = append(m.stores, m.global)

	for _, env := range cfg.Environments {
		envID := ComponentID(len(m.stores))
		es := newComponentStore(m, ComponentInfo{
			ID:          envID,
			Name:        env.Name,
			Kind:        KindEnvironment,
			Environment: envID,
		})
		m.stores = append(m.stores, es)
		m.byName[env.Name] = envID

		for _, name := range env.Materials {
			matID := ComponentID(len(m.stores))
			m.stores = append(m.stores, newComponentStore(m, ComponentInfo{
				ID:          matID,
				Name:        name,
				Kind:        KindMaterial,
				Environment: envID,
			}))
			m.byName[name] = matID
			es.Materials = append(es.Materials, matID)
		}
	}

	m.log.Debug().
		Int("cells", len(cells)).
		Int("components", len(m.stores)-1).
		Msg("component index manager created")
	return m, nil
}

// NumCells returns the number of mesh cells known to the manager
func (m *Manager) NumCells() int {
	return m.global.count()
}

// NumArrays returns the number of packed arrays, global array included
func (m *Manager) NumArrays() int {
	return len(m.stores)
}

// Component resolves a component by name
func (m *Manager) Component(name string) (ComponentID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Info describes component id
func (m *Manager) Info(id ComponentID) (ComponentInfo, error) {
	s, err := m.store(id)
	if err != nil {
		return ComponentInfo{}, err
	}
	return s.ComponentInfo, nil
}

// Components lists every material and environment in id order
func (m *Manager) Components() []ComponentInfo {
	infos := make([]ComponentInfo, 0, len(m.stores)-1)
	for _, s := range m.stores[1:] {
		infos = append(infos, s.ComponentInfo)
	}
	return infos
}

// Count returns the number of cells holding component id
func (m *Manager) Count(id ComponentID) int {
	s, err := m.store(id)
	if err != nil {
		return 0
	}
	return s.count()
}

func (m *Manager) store(id ComponentID) (*componentStore, error) {
	if id < 0 || int(id) >= len(m.stores) {
		return nil, fmt.Errorf("component %d: %w", id, ErrUnknownComponent)
	}
	return m.stores[id], nil
}

func (m *Manager) materialStore(id ComponentID) (*componentStore, error) {
	s, err := m.store(id)
	if err != nil {
		return nil, err
	}
	if s.Kind != KindMaterial {
		return nil, fmt.Errorf("component %d (%s %q): %w", id, s.Kind, s.Name, ErrNotMaterial)
	}
	return s, nil
}

// group returns the store whose lock serializes mutations of s
func (m *Manager) group(s *componentStore) *componentStore {
	if s.Kind == KindGlobal {
		return s
	}
	return m.stores[s.Environment]
}

// Insert makes material mat present in cell. The new record takes the slot
// following the last one of the material's array. When the material's
// environment is not yet present in cell it is inserted as well.
func (m *Manager) Insert(cell mesh.GlobalCell, mat ComponentID) (MatItem, error) {
	ms, err := m.materialStore(mat)
	if err != nil {
		return MatItem{}, err
	}
	if !m.global.has(cell) {
		return MatItem{}, fmt.Errorf("insert %s: %w", cell, ErrUnknownCell)
	}

	es := m.group(ms)
	es.mu.Lock()
	defer es.mu.Unlock()

	if ms.has(cell) {
		return MatItem{}, fmt.Errorf("insert %s into %q: %w", cell, ms.Name, ErrDuplicateAssociation)
	}

	if !es.has(cell) {
		es.insert(cell)
		m.slotAppended(es.ID)
		m.log.Debug().
			Stringer("cell", cell).
			Str("environment", es.Name).
			Msg("environment entered cell")
	}

	rid := ms.insert(cell)
	m.slotAppended(ms.ID)
	return MatItem{ref: ms.ref(rid)}, nil
}

// Remove drops material mat from cell. The record in the last slot of the
// material's array is moved into the freed slot, so the slot of an unrelated
// cell may change. The environment leaves the cell with its last material.
func (m *Manager) Remove(cell mesh.GlobalCell, mat ComponentID) error {
	ms, err := m.materialStore(mat)
	if err != nil {
		return err
	}

	es := m.group(ms)
	es.mu.Lock()
	defer es.mu.Unlock()

	if !ms.has(cell) {
		return fmt.Errorf("remove %s from %q: %w", cell, ms.Name, ErrMissingAssociation)
	}

	m.removeRecord(ms, cell)

	for _, other := range es.Materials {
		if m.stores[other].has(cell) {
			return nil
		}
	}
	m.removeRecord(es, cell)
	m.log.Debug().
		Stringer("cell", cell).
		Str("environment", es.Name).
		Msg("environment left cell")
	return nil
}

func (m *Manager) removeRecord(s *componentStore, cell mesh.GlobalCell) {
	slot, rel := s.remove(cell)
	m.slotRemoved(s.ID, slot)
	if rel.moved {
		m.log.Debug().
			Str("component", s.Name).
			Stringer("cell", rel.cell).
			Int32("from", rel.from).
			Int32("to", rel.to).
			Msg("relocated record")
	}
}

// Find returns the view of cell for component id, or false when the
// component is not present in the cell. It never creates anything.
func (m *Manager) Find(cell mesh.GlobalCell, id ComponentID) (ComponentItem, bool) {
	s, err := m.store(id)
	if err != nil {
		return nil, false
	}
	g := m.group(s)
	if g != m.global {
		g.mu.Lock()
		defer g.mu.Unlock()
	}
	rid, ok := s.byCell[cell]
	if !ok {
		return nil, false
	}
	return s.item(rid), true
}

// FindMat is Find restricted to materials
func (m *Manager) FindMat(cell mesh.GlobalCell, mat ComponentID) (MatItem, bool) {
	s, err := m.materialStore(mat)
	if err != nil {
		return MatItem{}, false
	}
	it, ok := m.Find(cell, s.ID)
	if !ok {
		return MatItem{}, false
	}
	return it.(MatItem), true
}

// FindEnv is Find restricted to environments
func (m *Manager) FindEnv(cell mesh.GlobalCell, env ComponentID) (EnvItem, bool) {
	s, err := m.store(env)
	if err != nil || s.Kind != KindEnvironment {
		return EnvItem{}, false
	}
	it, ok := m.Find(cell, env)
	if !ok {
		return EnvItem{}, false
	}
	return it.(EnvItem), true
}

// IndexOf returns the current index of cell in component id, AbsentIndex
// when the component is not present
func (m *Manager) IndexOf(cell mesh.GlobalCell, id ComponentID) MatVarIndex {
	it, ok := m.Find(cell, id)
	if !ok {
		return AbsentIndex
	}
	return it.Index()
}

// Cell returns the whole-cell view of cell
func (m *Manager) Cell(cell mesh.GlobalCell) (CellItem, error) {
	if !m.global.has(cell) {
		return CellItem{}, fmt.Errorf("%s: %w", cell, ErrUnknownCell)
	}
	return m.cellItem(cell), nil
}

func (m *Manager) cellItem(cell mesh.GlobalCell) CellItem {
	return CellItem{ref: m.global.ref(m.global.byCell[cell])}
}

// CellsOf returns a copy of the set of cell local ids holding component id
func (m *Manager) CellsOf(id ComponentID) *roaring.Bitmap {
	s, err := m.store(id)
	if err != nil {
		return roaring.New()
	}
	return s.presence.Clone()
}

// CellsWithAll returns the local ids of the cells holding every component
// in ids
func (m *Manager) CellsWithAll(ids ...ComponentID) *roaring.Bitmap {
	if len(ids) == 0 {
		return roaring.New()
	}
	res := m.CellsOf(ids[0])
	for _, id := range ids[1:] {
		s, err := m.store(id)
		if err != nil {
			return roaring.New()
		}
		res.And(s.presence)
	}
	return res
}

// NbMaterial returns the number of materials present in cell
func (m *Manager) NbMaterial(cell mesh.GlobalCell) int {
	n := 0
	for _, s := range m.stores[1:] {
		if s.Kind == KindMaterial && s.presence.Contains(uint32(cell.LocalID())) && s.has(cell) {
			n++
		}
	}
	return n
}
