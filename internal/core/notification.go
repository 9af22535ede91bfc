package core

import "github.com/dshills/keybridge/internal/types"

// Category groups notifications by the hook that carries them.
type Category int

const (
	CategoryDocument Category = iota
	CategorySelection
	CategoryView
	CategoryMode
	CategoryDiagnostics
	CategoryLSP
	CategoryCompletion
	CategoryCommand
	CategoryWorkspace
	CategoryVCS
	CategoryEditor
	CategoryOperation
)

// Categories lists every category.
var Categories = []Category{
	CategoryDocument, CategorySelection, CategoryView, CategoryMode,
	CategoryDiagnostics, CategoryLSP, CategoryCompletion, CategoryCommand,
	CategoryWorkspace, CategoryVCS, CategoryEditor, CategoryOperation,
}

func (c Category) String() string {
	switch c {
	case CategoryDocument:
		return "document"
	case CategorySelection:
		return "selection"
	case CategoryView:
		return "view"
	case CategoryMode:
		return "mode"
	case CategoryDiagnostics:
		return "diagnostics"
	case CategoryLSP:
		return "lsp"
	case CategoryCompletion:
		return "completion"
	case CategoryCommand:
		return "command"
	case CategoryWorkspace:
		return "workspace"
	case CategoryVCS:
		return "vcs"
	case CategoryEditor:
		return "editor"
	case CategoryOperation:
		return "operation"
	default:
		return "unknown"
	}
}

// Notification is a raw state-change announcement. Implementations may
// reference live core state and are only valid during the hook call.
type Notification interface {
	Category() Category
}

// Hook receives notifications on the loop goroutine. Hooks must not block.
type Hook func(Notification)

// HookSource accepts hook registrations, one category at a time.
type HookSource interface {
	OnNotification(c Category, h Hook)
}

// DocumentDidOpen is sent after a document is loaded.
type DocumentDidOpen struct{ Doc *Document }

// DocumentDidChange is sent after Changes were applied to Doc.
type DocumentDidChange struct {
	Doc     *Document
	Changes ChangeSet
}

// DocumentDidClose is sent after a document is removed. Doc is no longer
// reachable from the editor.
type DocumentDidClose struct{ Doc *Document }

// DocumentDidSave is sent after a save attempt. Err is nil on success.
type DocumentDidSave struct {
	Doc *Document
	Err error
}

// LanguageDidChange is sent when a document's language is (re)assigned.
type LanguageDidChange struct{ Doc *Document }

// SelectionDidChange is sent after a view's selection moved.
type SelectionDidChange struct{ View *View }

// ViewDidFocus is sent when the active view changes. Previous may be nil.
type ViewDidFocus struct {
	View     *View
	Previous *View
}

// ViewDidScroll is sent after a scroll offset changed.
type ViewDidScroll struct{ View *View }

// ViewDidSplit is sent after View was created by splitting.
type ViewDidSplit struct {
	View     *View
	Vertical bool
}

// ViewDidClose is sent after a view was removed.
type ViewDidClose struct{ View *View }

// ModeDidSwitch is sent on every mode transition.
type ModeDidSwitch struct {
	Old, New  types.Mode
	ByCommand bool
}

// DiagnosticsDidChange is sent when a document's diagnostics were replaced.
type DiagnosticsDidChange struct{ Doc *Document }

// Server is a language-server session.
type Server struct {
	ID       types.ServerID
	Name     string
	Language string
	Root     string
}

// ServerDidInitialize is sent once a server session is ready.
type ServerDidInitialize struct{ Server *Server }

// ServerDidExit is sent when a server session ended.
type ServerDidExit struct{ Server *Server }

// ServerDidFail is sent when a server reported an error.
type ServerDidFail struct {
	Server *Server
	Err    error
}

// ServerStartRequested asks the host to start a server for a language.
type ServerStartRequested struct {
	Root     string
	Name     string
	Language string
}

// ProgressPhase is the lifecycle position of a progress report.
type ProgressPhase int

const (
	ProgressBegin ProgressPhase = iota
	ProgressReport
	ProgressEnd
)

// ProgressDidReport carries one work-done progress report.
type ProgressDidReport struct {
	Server  *Server
	Token   string
	Phase   ProgressPhase
	Title   string
	Message string
	Percent int
}

// PostInsertChar is sent after a character was typed in insert mode.
type PostInsertChar struct {
	View *View
	Char rune
}

// PostCommand is sent after a named command ran successfully.
type PostCommand struct {
	Name string
	View *View
}

// FileOp is a file-system change kind.
type FileOp int

const (
	FileCreated FileOp = iota
	FileRemoved
	FileRenamed
	FileWritten
)

// FileSystemChanged reports a change below the workspace root. OldPath is
// set for renames.
type FileSystemChanged struct {
	Path    string
	OldPath string
	Op      FileOp
}

// WorkingDirectoryDidChange is sent after the core changed directory.
type WorkingDirectoryDidChange struct{ Path string }

// HeadDidChange is sent when the repository's checked-out branch changed.
type HeadDidChange struct {
	Root   string
	Branch string
}

// WorkTreeDidChange carries the working-tree status of the open documents.
type WorkTreeDidChange struct {
	Root  string
	Files []types.FileStatus
}

// DiffDidChange carries a document's hunks against its last saved text.
type DiffDidChange struct {
	Doc   *Document
	Hunks []types.Hunk
}

// StatusDidChange sets the status line.
type StatusDidChange struct {
	Message  string
	Severity types.Severity
}

// ThemeDidChange is sent after the theme changed.
type ThemeDidChange struct{ Theme string }

// AreaDidResize is sent after the core re-laid-out for a new area.
type AreaDidResize struct{ Width, Height int }

// HostFocusDidChange is sent when the host window gained or lost focus.
type HostFocusDidChange struct{ Focused bool }

// PromptDidOpen asks the host to collect a line of input for a prompt
// whose callback is held by the core under Prompt.
type PromptDidOpen struct {
	Prompt types.PromptID
	Title  string
}

// QuitRequested asks the host to shut down.
type QuitRequested struct{ Force bool }

// CommandDidRun reports a finished command operation.
type CommandDidRun struct {
	Correlation types.Correlation
	Command     string
	Source      types.CommandSource
}

// OperationDidFail reports an operation that could not be applied.
type OperationDidFail struct {
	Correlation types.Correlation
	Operation   string
	Err         error
}

func (DocumentDidOpen) Category() Category           { return CategoryDocument }
func (DocumentDidChange) Category() Category         { return CategoryDocument }
func (DocumentDidClose) Category() Category          { return CategoryDocument }
func (DocumentDidSave) Category() Category           { return CategoryDocument }
func (LanguageDidChange) Category() Category         { return CategoryDocument }
func (SelectionDidChange) Category() Category        { return CategorySelection }
func (ViewDidFocus) Category() Category              { return CategoryView }
func (ViewDidScroll) Category() Category             { return CategoryView }
func (ViewDidSplit) Category() Category              { return CategoryView }
func (ViewDidClose) Category() Category              { return CategoryView }
func (ModeDidSwitch) Category() Category             { return CategoryMode }
func (DiagnosticsDidChange) Category() Category      { return CategoryDiagnostics }
func (ServerDidInitialize) Category() Category       { return CategoryLSP }
func (ServerDidExit) Category() Category             { return CategoryLSP }
func (ServerDidFail) Category() Category             { return CategoryLSP }
func (ServerStartRequested) Category() Category      { return CategoryLSP }
func (ProgressDidReport) Category() Category         { return CategoryLSP }
func (PostInsertChar) Category() Category            { return CategoryCompletion }
func (PostCommand) Category() Category               { return CategoryCommand }
func (FileSystemChanged) Category() Category         { return CategoryWorkspace }
func (WorkingDirectoryDidChange) Category() Category { return CategoryWorkspace }
func (HeadDidChange) Category() Category             { return CategoryVCS }
func (WorkTreeDidChange) Category() Category         { return CategoryVCS }
func (DiffDidChange) Category() Category             { return CategoryVCS }
func (StatusDidChange) Category() Category           { return CategoryEditor }
func (ThemeDidChange) Category() Category            { return CategoryEditor }
func (AreaDidResize) Category() Category             { return CategoryEditor }
func (HostFocusDidChange) Category() Category        { return CategoryEditor }
func (PromptDidOpen) Category() Category             { return CategoryEditor }
func (QuitRequested) Category() Category             { return CategoryEditor }
func (CommandDidRun) Category() Category             { return CategoryOperation }
func (OperationDidFail) Category() Category          { return CategoryOperation }
