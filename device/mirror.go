package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/DGMaterials/materials"
	"github.com/notargets/gocca"
)

const float64Size = int64(8)

// Mirror keeps a device copy of a variable's packed arrays. All arrays share
// one allocation, array a starting at Layout.Offsets[a]; the offsets are
// uploaded alongside so kernels can address value (a, v) as
// values[offsets[a] + v].
type Mirror struct {
	Device  *gocca.OCCADevice
	Values  *gocca.OCCAMemory
	Offsets *gocca.OCCAMemory
	Layout  PackedLayout

	variable *materials.Variable
	capacity int64 // Allocated values, may exceed Layout.Total()
}

// NewMirror creates an empty mirror of v on device
func NewMirror(device *gocca.OCCADevice, v *materials.Variable) *Mirror {
	return &Mirror{
		Device:   device,
		variable: v,
	}
}

// Upload copies the variable to the device. Storage grows when the arrays
// outgrew the previous allocation.
func (mr *Mirror) Upload() error {
	arrays := mr.variable.Arrays()
	layout := NewPackedLayout(arrays)

	if err := mr.ensureCapacity(layout.Total()); err != nil {
		return err
	}

	for a, vals := range arrays {
		if len(vals) == 0 {
			continue
		}
		bytes := int64(len(vals)) * float64Size
		offsetBytes := layout.Offsets[a] * float64Size
		mr.Values.CopyFromWithOffset(unsafe.Pointer(&vals[0]), bytes, offsetBytes)
	}

	// Offsets are rewritten every time, array sizes move with each step
	if mr.Offsets != nil {
		mr.Offsets.Free()
	}
	offsets := layout.Offsets
	mr.Offsets = mr.Device.Malloc(int64(len(offsets))*8, unsafe.Pointer(&offsets[0]), nil)
	if mr.Offsets == nil {
		return fmt.Errorf("failed to allocate offsets for %s", mr.variable.Name())
	}

	mr.Layout = layout
	return nil
}

// Download copies device values back into the variable. The packed arrays
// must not have changed size since the last Upload.
func (mr *Mirror) Download() error {
	if mr.Values == nil {
		return fmt.Errorf("variable %s was never uploaded", mr.variable.Name())
	}
	arrays := mr.variable.Arrays()
	if current := NewPackedLayout(arrays); !current.Same(mr.Layout) {
		return fmt.Errorf("packed arrays of %s changed since upload", mr.variable.Name())
	}

	for a, vals := range arrays {
		if len(vals) == 0 {
			continue
		}
		bytes := int64(len(vals)) * float64Size
		offsetBytes := mr.Layout.Offsets[a] * float64Size
		mr.Values.CopyToWithOffset(unsafe.Pointer(&vals[0]), bytes, offsetBytes)
	}
	return nil
}

// Free releases device memory
func (mr *Mirror) Free() {
	if mr.Values != nil {
		mr.Values.Free()
		mr.Values = nil
	}
	if mr.Offsets != nil {
		mr.Offsets.Free()
		mr.Offsets = nil
	}
	mr.capacity = 0
}

func (mr *Mirror) ensureCapacity(total int64) error {
	if mr.Values != nil && total <= mr.capacity {
		return nil
	}
	if mr.Values != nil {
		mr.Values.Free()
	}

	// Grow with headroom, material fronts keep adding cells
	capacity := total + total/4
	if capacity < 1 {
		capacity = 1
	}
	mr.Values = mr.Device.Malloc(capacity*float64Size, nil, nil)
	if mr.Values == nil {
		mr.capacity = 0
		return fmt.Errorf("failed to allocate %d values for %s", capacity, mr.variable.Name())
	}
	mr.capacity = capacity
	return nil
}
