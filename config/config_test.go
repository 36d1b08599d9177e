package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matfront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Mesh.Cells)
	assert.Equal(t, "fresh", cfg.Front.Ahead)
	assert.Equal(t, "burnt", cfg.Front.Behind)
	assert.Equal(t, 50, cfg.Front.Steps)
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.True(t, cfg.Index.SortOnCompact)
	assert.Equal(t, DefaultEnvironments, cfg.Environments)
	assert.False(t, cfg.Device.Enabled)

	mc := cfg.MaterialsConfig()
	require.Len(t, mc.Environments, 2)
	assert.Equal(t, "reactants", mc.Environments[0].Name)
	assert.Equal(t, []string{"burnt"}, mc.Environments[1].Materials)
	assert.Len(t, cfg.ManagerOptions(), 2)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
mesh:
  cells: 32
environments:
  - name: gas
    materials: [air, smoke]
  - name: solid
    materials: [wood]
front:
  ahead: wood
  behind: smoke
  steps: 12
  width: 0.1
index:
  workers: 2
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Mesh.Cells)
	require.Len(t, cfg.Environments, 2)
	assert.Equal(t, []string{"air", "smoke"}, cfg.Environments[0].Materials)
	assert.Equal(t, "wood", cfg.Front.Ahead)
	assert.Equal(t, 12, cfg.Front.Steps)
	assert.InDelta(t, 0.1, cfg.Front.Width, 1e-12)
	assert.Equal(t, 2, cfg.Index.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Defaults fill the gaps
	assert.InDelta(t, 0.02, cfg.Front.Speed, 1e-12)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "front:\n  steps: 3\n")
	t.Setenv("MATFRONT_FRONT_STEPS", "9")
	t.Setenv("MATFRONT_MESH_CELLS", "64")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Front.Steps)
	assert.Equal(t, 64, cfg.Mesh.Cells)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"UndeclaredMaterial": "front:\n  ahead: lava\n",
		"SameMaterials":      "front:\n  ahead: burnt\n  behind: burnt\n",
		"NoCells":            "mesh:\n  cells: 0\n",
		"NegativeWidth":      "front:\n  width: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
