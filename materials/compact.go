package materials

import (
	"errors"
	"fmt"
	"slices"
)

// Compact reorganizes the packed array of component id. Removal already
// keeps arrays hole free, so this is a no-op unless the manager was built
// with WithSortOnCompact, in which case slots are reordered by ascending
// cell local id and every variable is permuted to match. It returns the
// number of records whose slot changed.
func (m *Manager) Compact(id ComponentID) (int, error) {
	s, err := m.store(id)
	if err != nil {
		return 0, err
	}
	if s.Kind == KindGlobal {
		return 0, nil
	}

	g := m.group(s)
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := s.checkDensity(); err != nil {
		return 0, err
	}
	if !m.sortOnCompact {
		return 0, nil
	}

	order := make([]int32, s.count())
	for i := range order {
		order[i] = int32(i)
	}
	slices.SortFunc(order, func(a, b int32) int {
		ca := s.records[s.dense[a]].cell.LocalID()
		cb := s.records[s.dense[b]].cell.LocalID()
		return int(ca) - int(cb)
	})

	changed := s.reorder(order)
	if changed > 0 {
		m.slotsPermuted(s.ID, order)
	}
	m.log.Debug().
		Str("component", s.Name).
		Int("count", s.count()).
		Int("moved", changed).
		Msg("compacted packed array")
	return changed, nil
}

// CompactAll compacts every component
func (m *Manager) CompactAll() (int, error) {
	total := 0
	for _, s := range m.stores[1:] {
		n, err := m.Compact(s.ID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// checkDensity verifies that slots are exactly [0, count) and that every
// slot points back at its own record
func (s *componentStore) checkDensity() error {
	if len(s.byCell) != len(s.dense) {
		return fmt.Errorf("component %q: %d cells mapped but %d slots", s.Name, len(s.byCell), len(s.dense))
	}
	if card := s.presence.GetCardinality(); card != uint64(len(s.dense)) {
		return fmt.Errorf("component %q: presence holds %d cells but %d slots", s.Name, card, len(s.dense))
	}
	for slot, rid := range s.dense {
		rec := &s.records[rid]
		if !rec.alive {
			return fmt.Errorf("component %q: slot %d holds destroyed record %d", s.Name, slot, rid)
		}
		want := NewMatVarIndex(int32(s.ID), int32(slot))
		if rec.index != want {
			return fmt.Errorf("component %q: slot %d holds record indexed %s", s.Name, slot, rec.index)
		}
		if s.byCell[rec.cell] != rid {
			return fmt.Errorf("component %q: %s not mapped to its record", s.Name, rec.cell)
		}
	}
	return nil
}

// Validate checks the density of every packed array and that each
// environment is present exactly in the cells holding one of its materials
func (m *Manager) Validate() error {
	var errs []error
	for _, s := range m.stores {
		if err := s.checkDensity(); err != nil {
			errs = append(errs, err)
		}
		if s.Kind != KindEnvironment {
			continue
		}
		union := m.CellsOf(s.Materials[0])
		for _, mat := range s.Materials[1:] {
			union.Or(m.stores[mat].presence)
		}
		if !union.Equals(s.presence) {
			errs = append(errs, fmt.Errorf("environment %q: present in %d cells, its materials in %d",
				s.Name, s.presence.GetCardinality(), union.GetCardinality()))
		}
	}
	return errors.Join(errs...)
}

// Stats summarizes the current associations
type Stats struct {
	Cells      int
	MixedCells int            // Cells holding more than one material
	Counts     map[string]int // Cells per component name
}

// Stats returns association counts per component
func (m *Manager) Stats() Stats {
	st := Stats{
		Cells:  m.NumCells(),
		Counts: make(map[string]int, len(m.stores)-1),
	}
	perCell := make(map[uint32]int)
	for _, s := range m.stores[1:] {
		st.Counts[s.Name] = s.count()
		if s.Kind != KindMaterial {
			continue
		}
		it := s.presence.Iterator()
		for it.HasNext() {
			perCell[it.Next()]++
		}
	}
	for _, n := range perCell {
		if n > 1 {
			st.MixedCells++
		}
	}
	return st
}
