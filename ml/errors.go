package ml

import (
	"errors"
	"fmt"
)

// ShapeError reports a dimension mismatch between operands.
type ShapeError struct {
	Op    string
	What  string
	Index int // row index for per-row checks, otherwise 0
	Got   int
	Want  int
}

func (e *ShapeError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("%s: %s mismatch at %d: got %d, want %d", e.Op, e.What, e.Index, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: %s mismatch: got %d, want %d", e.Op, e.What, e.Got, e.Want)
}

// LabelError reports a label outside [0, Classes).
type LabelError struct {
	Index   int
	Label   int
	Classes int
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label %d at sample %d out of range [0, %d)", e.Label, e.Index, e.Classes)
}

// StateError reports a gate used out of order.
type StateError struct {
	Gate string
	Msg  string
}

func (e *StateError) Error() string {
	return e.Gate + ": " + e.Msg
}

// ErrNotForwarded is returned by Backward on a cache that no forward call produced.
var ErrNotForwarded = &StateError{Gate: "gate", Msg: "backward called before forward"}

// IsShapeError reports whether err is or wraps a *ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}
