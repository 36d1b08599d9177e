package materials

import (
	"testing"

	"github.com/notargets/DGMaterials/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItems(t *testing.T) {
	m, cs := newTestManager(t, 5)
	for _, k := range []int{1, 3, 4} {
		_, err := m.Insert(cs.Cells[k], air)
		require.NoError(t, err)
	}

	view, err := m.Items(air)
	require.NoError(t, err)
	assert.Equal(t, air, view.Component())
	assert.Equal(t, 3, view.NbItem())
	assert.Equal(t, []mesh.GlobalCell{cs.Cells[1], cs.Cells[3], cs.Cells[4]}, view.Cells())
	for i, mvi := range view.MatVarIndexes() {
		assert.Equal(t, NewMatVarIndex(int32(air), int32(i)), mvi)
		assert.Equal(t, mvi, view.Item(i).Index())
	}

	mats := view.MatItems()
	require.Len(t, mats, 3)
	assert.Equal(t, air, mats[2].Material())
	assert.Nil(t, view.EnvItems())

	sub, err := view.SubView(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NbItem())
	assert.Equal(t, []mesh.GlobalCell{cs.Cells[3], cs.Cells[4]}, sub.Cells())

	_, err = view.SubView(2, 2)
	assert.Error(t, err)
	_, err = view.SubView(-1, 1)
	assert.Error(t, err)

	envView, err := m.Items(gas)
	require.NoError(t, err)
	assert.Len(t, envView.EnvItems(), 3)
	assert.Nil(t, envView.MatItems())
	_, isEnv := envView.Item(0).(EnvItem)
	assert.True(t, isEnv)

	globalView, err := m.Items(GlobalComponent)
	require.NoError(t, err)
	assert.Equal(t, 5, globalView.NbItem())
	_, isCell := globalView.Item(4).(CellItem)
	assert.True(t, isCell)

	_, err = m.Items(55)
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestAllEnvCell(t *testing.T) {
	m, cs := newTestManager(t, 3)
	c := cs.Cells[1]

	aec, err := m.AllEnvCell(c)
	require.NoError(t, err)
	assert.Equal(t, 0, aec.NbEnvironment())
	assert.Equal(t, c, aec.GlobalCell())

	for _, mat := range []ComponentID{steel, steam, air} {
		_, err := m.Insert(c, mat)
		require.NoError(t, err)
	}

	aec, err = m.AllEnvCell(c)
	require.NoError(t, err)
	require.Equal(t, 2, aec.NbEnvironment())
	assert.Equal(t, int32(1), aec.Cell().Index().ValueIndex())

	envs := aec.EnvItems()
	assert.Equal(t, gas, envs[0].Environment())
	assert.Equal(t, solid, envs[1].Environment())

	gasMats := envs[0].MatItems()
	require.Len(t, gasMats, 2)
	assert.Equal(t, air, gasMats[0].Material())
	assert.Equal(t, steam, gasMats[1].Material())
	for _, mi := range gasMats {
		assert.Equal(t, c, mi.GlobalCell())
	}

	_, err = m.AllEnvCell(mesh.NullCell)
	assert.ErrorIs(t, err, ErrUnknownCell)
}
