package coalesce

import "errors"

var (
	// ErrClosed is returned by operations on a closed stage.
	ErrClosed = errors.New("coalesce: stage closed")

	// ErrFull is returned by Push when the stage is at capacity, nothing can
	// be dropped, and the overflow policy is OverflowReject.
	ErrFull = errors.New("coalesce: stage full")
)
