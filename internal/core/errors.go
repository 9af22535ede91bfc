package core

import (
	"errors"
	"fmt"

	"github.com/dshills/keybridge/internal/capability"
)

var (
	// ErrLoopClosed is returned by Post after the loop stopped.
	ErrLoopClosed = errors.New("core: loop closed")

	// ErrUnknownDocument is returned for a document id the core does not hold.
	ErrUnknownDocument = fmt.Errorf("core: unknown document: %w", capability.ErrNotFound)

	// ErrUnknownView is returned for a view id the core does not hold.
	ErrUnknownView = fmt.Errorf("core: unknown view: %w", capability.ErrNotFound)

	// ErrUnknownCommand is returned for an unregistered command name.
	ErrUnknownCommand = fmt.Errorf("core: unknown command: %w", capability.ErrNotFound)

	// ErrNoActiveView is returned by operations that need a focused view.
	ErrNoActiveView = errors.New("core: no active view")

	// ErrInvalidChange is returned when a change set does not fit its document.
	ErrInvalidChange = errors.New("core: change set does not match document length")

	// ErrUnsupportedOperation is returned for operation types the core does not know.
	ErrUnsupportedOperation = errors.New("core: unsupported operation")
)

// CommandError wraps a failure inside a command.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
