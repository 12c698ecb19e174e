package sketch

import (
	"errors"
	"fmt"
)

// Ownership contract violations. They are always returned to the caller.
var (
	ErrDuplicateEntity = errors.New("sketch: entity already owned by sketch")
	ErrUnknownEntity   = errors.New("sketch: entity not owned by sketch")
)

// InvalidDoFIndexError is the panic value raised on out-of-range DoF access.
type InvalidDoFIndexError struct {
	Type  string
	Index int
	NDoF  int
}

func (e InvalidDoFIndexError) Error() string {
	return fmt.Sprintf("sketch: %s: invalid DoF index %d (entity has %d)", e.Type, e.Index, e.NDoF)
}

// InvalidConstraintIndexError is the panic value raised on out-of-range
// constraint access.
type InvalidConstraintIndexError struct {
	Type         string
	Index        int
	NConstraints int
}

func (e InvalidConstraintIndexError) Error() string {
	return fmt.Sprintf("sketch: %s: invalid constraint index %d (entity has %d)",
		e.Type, e.Index, e.NConstraints)
}

func badDoF(typeName string, i, n int) {
	panic(InvalidDoFIndexError{Type: typeName, Index: i, NDoF: n})
}

func badConstraint(typeName string, i, n int) {
	panic(InvalidConstraintIndexError{Type: typeName, Index: i, NConstraints: n})
}

// badSubstitute panics when a dependency is replaced by an entity of the
// wrong kind.
func badSubstitute(owner Entity, want string, got Entity) {
	panic(fmt.Sprintf("sketch: %s: cannot substitute %s for a %s dependency",
		owner.TypeName(), got.TypeName(), want))
}
