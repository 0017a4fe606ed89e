package nn

import (
	"errors"
	"fmt"
)

// ErrShape is matched by every *ShapeError via errors.Is.
var ErrShape = errors.New("shape mismatch")

// ShapeError reports an assignment whose element count differs from the
// size a layer declared at construction.
type ShapeError struct {
	Layer string // Layer name, or its type tag when unnamed
	Field string // "inputs", "weights", "biases", ...
	Want  int
	Got   int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s has %d elements, want %d", e.Layer, e.Field, e.Got, e.Want)
}

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

func checkLen(b *base, field string, want int, got []float64) error {
	if len(got) != want {
		return &ShapeError{Layer: b.label(), Field: field, Want: want, Got: len(got)}
	}
	return nil
}
