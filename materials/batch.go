package materials

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/notargets/DGMaterials/mesh"
	"github.com/sourcegraph/conc/pool"
)

// OpKind selects the mutation performed by an Op
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpRemove
)

func (k OpKind) String() string {
	if k == OpRemove {
		return "remove"
	}
	return "insert"
}

// Op is one insert or remove of a (cell, material) association
type Op struct {
	Kind     OpKind
	Cell     mesh.GlobalCell
	Material ComponentID
}

// BatchResult counts the operations applied by ApplyBatch
type BatchResult struct {
	Inserted int
	Removed  int
	Failed   int
}

// ApplyBatch applies ops, one goroutine per environment so that no two
// goroutines touch the same packed array. Operations of one environment run
// in the order given. A failing operation is skipped and reported; the
// others still run. Cancelling ctx stops each group before its next
// operation.
func (m *Manager) ApplyBatch(ctx context.Context, ops []Op) (BatchResult, error) {
	var errs []error
	groups := make(map[ComponentID][]Op)
	var order []ComponentID
	for _, op := range ops {
		ms, err := m.materialStore(op.Material)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", op.Kind, op.Cell, err))
			continue
		}
		env := ms.Environment
		if _, ok := groups[env]; !ok {
			order = append(order, env)
		}
		groups[env] = append(groups[env], op)
	}

	var inserted, removed, failed atomic.Int64
	failed.Add(int64(len(errs)))

	p := pool.New().WithMaxGoroutines(m.workers).WithContext(ctx)
	for _, env := range order {
		envOps := groups[env]
		p.Go(func(ctx context.Context) error {
			var groupErrs []error
			for _, op := range envOps {
				if err := ctx.Err(); err != nil {
					return errors.Join(append(groupErrs, err)...)
				}
				var err error
				switch op.Kind {
				case OpInsert:
					_, err = m.Insert(op.Cell, op.Material)
					if err == nil {
						inserted.Add(1)
					}
				case OpRemove:
					err = m.Remove(op.Cell, op.Material)
					if err == nil {
						removed.Add(1)
					}
				default:
					err = fmt.Errorf("unknown operation kind %d", op.Kind)
				}
				if err != nil {
					failed.Add(1)
					m.log.Warn().Err(err).Msg("batch operation failed")
					groupErrs = append(groupErrs, err)
				}
			}
			return errors.Join(groupErrs...)
		})
	}
	if err := p.Wait(); err != nil {
		errs = append(errs, err)
	}

	res := BatchResult{
		Inserted: int(inserted.Load()),
		Removed:  int(removed.Load()),
		Failed:   int(failed.Load()),
	}
	m.log.Info().
		Int("ops", len(ops)).
		Int("groups", len(order)).
		Int("inserted", res.Inserted).
		Int("removed", res.Removed).
		Int("failed", res.Failed).
		Msg("applied batch")
	return res, errors.Join(errs...)
}
