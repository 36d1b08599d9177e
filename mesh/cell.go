package mesh

import (
	"fmt"
)

// GlobalCell is a stable handle on a mesh cell. It is comparable and is only
// ever used as a backward reference by component records.
type GlobalCell struct {
	localID  int32
	uniqueID int64
}

// NullCell is the handle carried by destroyed records
var NullCell = GlobalCell{localID: -1, uniqueID: -1}

// NewGlobalCell creates a handle for the cell at position localID of its mesh
func NewGlobalCell(localID int32, uniqueID int64) GlobalCell {
	return GlobalCell{localID: localID, uniqueID: uniqueID}
}

// LocalID returns the position of the cell in its mesh
func (c GlobalCell) LocalID() int32 { return c.localID }

// UniqueID returns the mesh-wide identifier of the cell
func (c GlobalCell) UniqueID() int64 { return c.uniqueID }

// IsNull reports whether c refers to no cell
func (c GlobalCell) IsNull() bool { return c.localID < 0 }

func (c GlobalCell) String() string {
	if c.IsNull() {
		return "cell(null)"
	}
	return fmt.Sprintf("cell(%d/%d)", c.localID, c.uniqueID)
}
