// Package splat defines Gaussian splats and the columnar clouds that hold them.
package splat

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfStream indicates a binary payload ended before all records were read.
	ErrEndOfStream = errors.New("splat: unexpected end of stream")

	// ErrIndexOutOfRange is the panic payload for an out of range splat index.
	ErrIndexOutOfRange = errors.New("splat: index out of range")

	// ErrInvalidFractionalBits indicates a fixed-point precision outside 0..23.
	ErrInvalidFractionalBits = errors.New("splat: invalid fractional bits")

	// ErrInvalidDegree indicates a spherical harmonics degree outside 0..3.
	ErrInvalidDegree = errors.New("splat: invalid spherical harmonics degree")
)

// FormatError reports a malformed or unsupported file.
type FormatError struct {
	// Format is the file format, "ply" or "spz".
	Format string
	// Reason describes the problem.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

// NewFormatError returns a FormatError for format with the given reason.
func NewFormatError(format, reason string) *FormatError {
	return &FormatError{Format: format, Reason: reason}
}

func (e *FormatError) Error() string {
	return e.Format + ": " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n))
	}
}
