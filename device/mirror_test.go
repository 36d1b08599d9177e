package device

import (
	"testing"

	"github.com/notargets/DGMaterials/materials"
	"github.com/notargets/DGMaterials/mesh"
)

func newMirrorFixture(t *testing.T) (*materials.Manager, *mesh.CellSet, *materials.Variable) {
	t.Helper()
	cs, err := mesh.NewLineCellSet(6, 0, 1)
	if err != nil {
		t.Fatalf("NewLineCellSet failed: %v", err)
	}
	m, err := materials.NewManager(cs.Cells, materials.Config{
		Environments: []materials.EnvironmentConfig{
			{Name: "fluid", Materials: []string{"water", "oil"}},
		},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m, cs, materials.NewVariable(m, "density")
}

func TestMirrorRoundTrip(t *testing.T) {
	device, err := NewDevice("")
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	defer device.Free()

	m, cs, v := newMirrorFixture(t)
	water, _ := m.Component("water")
	oil, _ := m.Component("oil")

	for _, c := range cs.Cells[:4] {
		item, err := m.Insert(c, water)
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		v.Set(item, 1000+float64(c.LocalID()))
	}
	for _, c := range cs.Cells[3:] {
		item, err := m.Insert(c, oil)
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		v.Set(item, 800+float64(c.LocalID()))
	}

	mirror := NewMirror(device, v)
	defer mirror.Free()

	if err := mirror.Upload(); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if got := mirror.Layout.Total(); got != int64(6+6+4+3) {
		t.Errorf("expected 19 values on device, got %d", got)
	}

	want := make([][]float64, len(v.Arrays()))
	for a, vals := range v.Arrays() {
		want[a] = append([]float64(nil), vals...)
		for i := range vals {
			vals[i] = -1
		}
	}

	if err := mirror.Download(); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	for a, vals := range v.Arrays() {
		for i := range vals {
			if vals[i] != want[a][i] {
				t.Errorf("array %d slot %d: expected %f, got %f", a, i, want[a][i], vals[i])
			}
		}
	}

	t.Run("ResizeRequiresUpload", func(t *testing.T) {
		if err := m.Remove(cs.Cells[0], water); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if err := mirror.Download(); err == nil {
			t.Fatalf("expected Download to fail after a removal")
		}
		if err := mirror.Upload(); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if err := mirror.Download(); err != nil {
			t.Fatalf("Download failed: %v", err)
		}
		item, ok := m.FindMat(cs.Cells[3], water)
		if !ok {
			t.Fatalf("water missing from cell 3")
		}
		if got := v.At(item); got != 1003 {
			t.Errorf("expected 1003 after round trip, got %f", got)
		}
	})
}

func TestMirrorDownloadBeforeUpload(t *testing.T) {
	_, _, v := newMirrorFixture(t)
	mirror := NewMirror(nil, v)
	if err := mirror.Download(); err == nil {
		t.Fatalf("expected error downloading a mirror never uploaded")
	}
}
