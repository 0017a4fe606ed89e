package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidTag  = errors.New("invalid block tag")
	ErrInvalidDims = errors.New("invalid block dims")
	ErrValueCount  = errors.New("value count does not match dims")
)

// FormatError locates a malformed block. It wraps one of the sentinel errors
// or a number parse error.
type FormatError struct {
	Line    int    // 1-based line number, 0 when not tied to a line
	Tag     string // Block tag, if already read
	Err     error
	Details string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := e.Err.Error()
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Tag != "" {
		msg = fmt.Sprintf("%s: %s", e.Tag, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error { return e.Err }
