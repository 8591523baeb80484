// Package xerrors defines the sentinel error values surfaced by the rest of
// this module. Errors are plain wrapped sentinels rather than a custom type
// hierarchy, matching the flat error style of the packages this module was
// built against.
package xerrors

import "errors"

var (
	// ErrIncompatibleSymbols is returned when two series do not share an
	// identical symbol set and an operation requires them to.
	ErrIncompatibleSymbols = errors.New("seriesmul: incompatible symbol sets")

	// ErrOverflow is returned when an index or count computation would
	// overflow the platform's integer width.
	ErrOverflow = errors.New("seriesmul: overflow")

	// ErrOutOfMemory is returned when an allocation needed to grow the
	// accumulator or driver state fails.
	ErrOutOfMemory = errors.New("seriesmul: out of memory")

	// ErrTruncatorFlagMismatch is returned when a multiplication functor is
	// constructed with an active/inactive flag that does not match the
	// truncator it was handed.
	ErrTruncatorFlagMismatch = errors.New("seriesmul: truncator flag mismatch")

	// ErrZeroDivision is returned by bucket lookups against a zero-capacity
	// accumulator.
	ErrZeroDivision = errors.New("seriesmul: bucket lookup against zero capacity")
)
