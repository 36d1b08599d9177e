package materials

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAssociation is returned by Insert when the material is
	// already present in the cell
	ErrDuplicateAssociation = errors.New("association already present")

	// ErrMissingAssociation is returned by Remove when the material is not
	// present in the cell
	ErrMissingAssociation = errors.New("association not present")

	ErrUnknownComponent = errors.New("unknown component")
	ErrNotMaterial      = errors.New("component is not a material")
	ErrUnknownCell      = errors.New("cell does not belong to the mesh")
)

// InvalidReferenceError is the panic value raised when a view is dereferenced
// after its record was destroyed. It signals a programming error.
type InvalidReferenceError struct {
	Component ComponentID
	Record    int32
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid component item reference: component %d record %d was destroyed",
		e.Component, e.Record)
}
