package capability

import "errors"

var (
	// ErrNotFound is returned by trait methods when the subject does not exist.
	ErrNotFound = errors.New("capability: not found")

	// ErrAlreadyProvided is returned when a trait is provided twice.
	ErrAlreadyProvided = errors.New("capability: already provided")

	// ErrNilImplementation is returned when providing a nil implementation.
	ErrNilImplementation = errors.New("capability: nil implementation")
)
