package capability

import "github.com/dshills/keybridge/internal/types"

// DocumentAccess is implemented by the editing core.
type DocumentAccess interface {
	// TextFor returns a snapshot of the document's text.
	TextFor(doc types.DocumentID) (types.Snapshot, bool)

	// Documents lists open documents in opening order.
	Documents() []types.DocumentID
}

// ViewManagement is implemented by the editing core.
type ViewManagement interface {
	// ActiveView returns the focused view.
	ActiveView() (types.ViewID, bool)

	// SetActive schedules a focus change. It returns ErrNotFound for an
	// unknown view; the change itself is applied on the core's loop.
	SetActive(view types.ViewID) error
}

// CommandExecutor is implemented by the editing core.
type CommandExecutor interface {
	HasCommand(name string) bool
	Commands() []string

	// Execute schedules a command and returns its correlation. The outcome
	// arrives later as an editor.command_executed or editor.operation_failed
	// event carrying the same correlation.
	Execute(name string, args ...string) (types.Correlation, error)
}

// ScrollManager is implemented by the editing core.
type ScrollManager interface {
	ScrollOffset(view types.ViewID) (types.Position, bool)

	// ScrollLines schedules a scroll by n lines; negative n scrolls up.
	ScrollLines(view types.ViewID, n int) error
}

// CompletionSurface is implemented by the presentation runtime.
type CompletionSurface interface {
	Show(items []types.CompletionItem)
	Hide()
	Visible() bool
}

// StatusSurface is implemented by the presentation runtime.
type StatusSurface interface {
	SetStatus(message string, severity types.Severity)
}

// PickerSurface is implemented by the presentation runtime.
type PickerSurface interface {
	OpenPicker(kind types.PickerKind) error
}
