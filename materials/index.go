package materials

import (
	"fmt"
)

// ComponentID identifies a material or an environment. It doubles as the
// array index of the component's packed storage.
type ComponentID int32

const (
	// GlobalComponent is the whole-cell array, one slot per mesh cell
	GlobalComponent ComponentID = 0

	// AbsentArray marks an index that addresses no packed array
	AbsentArray int32 = -1
)

// MatVarIndex locates a value inside per-component packed storage:
// ArrayIndex selects the array, ValueIndex the slot within it.
type MatVarIndex struct {
	arrayIndex int32
	valueIndex int32
}

// AbsentIndex is returned when a component is not present in a cell
var AbsentIndex = MatVarIndex{arrayIndex: AbsentArray, valueIndex: -1}

// NewMatVarIndex builds an index addressing slot valueIndex of array arrayIndex
func NewMatVarIndex(arrayIndex, valueIndex int32) MatVarIndex {
	return MatVarIndex{arrayIndex: arrayIndex, valueIndex: valueIndex}
}

func (mvi MatVarIndex) ArrayIndex() int32 { return mvi.arrayIndex }

func (mvi MatVarIndex) ValueIndex() int32 { return mvi.valueIndex }

// IsAbsent reports whether mvi denotes "no association". Such an index must
// never be used to address packed storage.
func (mvi MatVarIndex) IsAbsent() bool { return mvi.arrayIndex == AbsentArray }

func (mvi MatVarIndex) String() string {
	return fmt.Sprintf("%d:%d", mvi.arrayIndex, mvi.valueIndex)
}
