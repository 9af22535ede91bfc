package bridge

import (
	"errors"
	"fmt"

	"github.com/dshills/keybridge/internal/coalesce"
)

var (
	// ErrClosed is returned by every pipeline operation after Close.
	ErrClosed = coalesce.ErrClosed

	// ErrCoreBusy is returned by Submit when the inbound queue is full.
	ErrCoreBusy = errors.New("bridge: core busy")

	// ErrUntranslatable marks notifications and intents the bridge cannot map.
	ErrUntranslatable = errors.New("bridge: untranslatable")
)

// TranslationError reports a value that could not be mapped across the
// boundary. Input is the Go type of the offending value.
type TranslationError struct {
	Input  string
	Reason string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("bridge: cannot translate %s: %s", e.Input, e.Reason)
}

func (e *TranslationError) Unwrap() error {
	return ErrUntranslatable
}

func untranslatable(v any, reason string) error {
	return &TranslationError{Input: fmt.Sprintf("%T", v), Reason: reason}
}
