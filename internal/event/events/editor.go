package events

import (
	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
	"github.com/dshills/keybridge/internal/types"
)

// Editor event topics.
const (
	TopicEditorModeChanged         topic.Topic = "editor.mode_changed"
	TopicEditorCommandExecuted     topic.Topic = "editor.command_executed"
	TopicEditorOperationFailed     topic.Topic = "editor.operation_failed"
	TopicEditorStatusChanged       topic.Topic = "editor.status_changed"
	TopicEditorRedrawRequested     topic.Topic = "editor.redraw_requested"
	TopicEditorShutdownRequested   topic.Topic = "editor.shutdown_requested"
	TopicEditorCompletionRequested topic.Topic = "editor.completion_requested"
	TopicEditorPickerRequested     topic.Topic = "editor.picker_requested"
)

// ModeChangeContext records what triggered a mode switch.
type ModeChangeContext int

const (
	ModeByUser ModeChangeContext = iota
	ModeByCommand
	ModeByCore
)

// ModeChanged is published on every modal switch.
type ModeChanged struct {
	editorEvent

	Old     types.Mode
	New     types.Mode
	Context ModeChangeContext
}

func (ModeChanged) Topic() topic.Topic { return TopicEditorModeChanged }
func (ModeChanged) Coalescible() bool  { return false }
func (ModeChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorModeChanged, "")
}

// CommandExecuted reports the outcome of a submitted operation. It is the
// asynchronous result notification for presentation submissions.
type CommandExecuted struct {
	editorEvent

	Command     string
	Correlation types.Correlation
	Source      types.CommandSource
}

func (CommandExecuted) Topic() topic.Topic { return TopicEditorCommandExecuted }
func (CommandExecuted) Coalescible() bool  { return false }
func (e CommandExecuted) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorCommandExecuted, string(e.Correlation))
}

// OperationFailed reports that a submitted operation could not be applied.
type OperationFailed struct {
	editorEvent

	Operation   string
	Correlation types.Correlation
	Reason      string
}

func (OperationFailed) Topic() topic.Topic { return TopicEditorOperationFailed }
func (OperationFailed) Coalescible() bool  { return false }
func (e OperationFailed) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorOperationFailed, string(e.Correlation))
}

// StatusChanged replaces the status-line message.
type StatusChanged struct {
	editorEvent

	Message  string
	Severity types.Severity
}

func (StatusChanged) Topic() topic.Topic { return TopicEditorStatusChanged }
func (StatusChanged) Coalescible() bool  { return true }
func (StatusChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorStatusChanged, "")
}

// RedrawReason says why a redraw was requested.
type RedrawReason int

const (
	RedrawContent RedrawReason = iota
	RedrawSelection
	RedrawMode
	RedrawTheme
	RedrawResize
	RedrawForce
)

// RedrawRequested asks the presentation runtime to repaint.
type RedrawRequested struct {
	editorEvent

	Reason RedrawReason
	Urgent bool
}

func (RedrawRequested) Topic() topic.Topic { return TopicEditorRedrawRequested }
func (RedrawRequested) Coalescible() bool  { return true }
func (RedrawRequested) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorRedrawRequested, "")
}

// ShutdownReason says why shutdown was requested.
type ShutdownReason int

const (
	ShutdownUser ShutdownReason = iota
	ShutdownSignal
	ShutdownError
)

// ShutdownRequested asks the presentation runtime to exit.
type ShutdownRequested struct {
	editorEvent

	Reason ShutdownReason
	Force  bool
}

func (ShutdownRequested) Topic() topic.Topic { return TopicEditorShutdownRequested }
func (ShutdownRequested) Coalescible() bool  { return false }
func (ShutdownRequested) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorShutdownRequested, "")
}

// CompletionRequested is published after an inserted character that may
// start a completion session.
type CompletionRequested struct {
	editorEvent

	Doc     types.DocumentID
	View    types.ViewID
	Trigger types.CompletionTrigger
}

func (CompletionRequested) Topic() topic.Topic { return TopicEditorCompletionRequested }
func (CompletionRequested) Coalescible() bool  { return true }
func (e CompletionRequested) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorCompletionRequested, e.View.String())
}

// PickerRequested asks the presentation runtime to open a picker overlay.
type PickerRequested struct {
	editorEvent

	Picker types.PickerKind
}

func (PickerRequested) Topic() topic.Topic { return TopicEditorPickerRequested }
func (PickerRequested) Coalescible() bool  { return false }
func (e PickerRequested) CoalesceKey() coalesce.Key {
	return keyOf(TopicEditorPickerRequested, e.Picker.String())
}
