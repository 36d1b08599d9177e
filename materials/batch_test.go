package materials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBatch(t *testing.T) {
	m, cs := newTestManager(t, 20, WithWorkers(3))
	v := NewVariable(m, "mass")

	var ops []Op
	for _, c := range cs.Cells {
		ops = append(ops,
			Op{Kind: OpInsert, Cell: c, Material: air},
			Op{Kind: OpInsert, Cell: c, Material: steel},
		)
		if c.LocalID()%2 == 0 {
			ops = append(ops, Op{Kind: OpInsert, Cell: c, Material: steam})
		}
	}

	res, err := m.ApplyBatch(context.Background(), ops)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Inserted)
	assert.Equal(t, 0, res.Removed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 20, m.Count(air))
	assert.Equal(t, 10, m.Count(steam))
	assert.Equal(t, 20, m.Count(steel))
	assert.Len(t, v.Values(steel), 20)

	// Same-environment operations run in order: insert then remove of the
	// same association nets out
	ops = ops[:0]
	for _, c := range cs.Cells[:5] {
		ops = append(ops,
			Op{Kind: OpRemove, Cell: c, Material: air},
			Op{Kind: OpInsert, Cell: c, Material: air},
			Op{Kind: OpRemove, Cell: c, Material: steel},
		)
	}
	res, err = m.ApplyBatch(context.Background(), ops)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Inserted)
	assert.Equal(t, 10, res.Removed)
	assert.Equal(t, 20, m.Count(air))
	assert.Equal(t, 15, m.Count(steel))
	assert.Equal(t, 15, m.Count(solid))
	assert.Len(t, v.Values(steel), 15)

	require.NoError(t, m.Validate())
}

func TestApplyBatch_ReportsFailures(t *testing.T) {
	m, cs := newTestManager(t, 3)
	c := cs.Cells[0]

	ops := []Op{
		{Kind: OpInsert, Cell: c, Material: air},
		{Kind: OpInsert, Cell: c, Material: air},
		{Kind: OpRemove, Cell: cs.Cells[1], Material: steel},
		{Kind: OpInsert, Cell: c, Material: gas},
		{Kind: OpInsert, Cell: cs.Cells[2], Material: steel},
	}
	res, err := m.ApplyBatch(context.Background(), ops)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateAssociation)
	assert.ErrorIs(t, err, ErrMissingAssociation)
	assert.ErrorIs(t, err, ErrNotMaterial)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 3, res.Failed)

	assert.Equal(t, 1, m.Count(air))
	assert.Equal(t, 1, m.Count(steel))
	require.NoError(t, m.Validate())
}

func TestApplyBatch_Cancelled(t *testing.T) {
	m, cs := newTestManager(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ops := []Op{{Kind: OpInsert, Cell: cs.Cells[0], Material: air}}
	res, err := m.ApplyBatch(ctx, ops)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 0, m.Count(air))
}
