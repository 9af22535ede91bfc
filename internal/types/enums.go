package types

// Mode is the modal editing state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeSelect
	ModeCommand
)

// String returns the mode name as shown in a status line.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NOR"
	case ModeInsert:
		return "INS"
	case ModeSelect:
		return "SEL"
	case ModeCommand:
		return "CMD"
	default:
		return "???"
	}
}

// Severity ranks diagnostics and status messages.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ChangeType summarizes the shape of one document edit.
type ChangeType int

const (
	ChangeInsert ChangeType = iota
	ChangeDelete
	ChangeReplace
	// ChangeBulk covers multi-operation transactions and empty change sets.
	ChangeBulk
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	case ChangeBulk:
		return "bulk"
	default:
		return "unknown"
	}
}

// PickerKind selects a picker overlay.
type PickerKind int

const (
	PickerFiles PickerKind = iota
	PickerBuffers
	PickerDiagnostics
	PickerWorkspaceDiagnostics
)

// String returns the picker name.
func (p PickerKind) String() string {
	switch p {
	case PickerFiles:
		return "files"
	case PickerBuffers:
		return "buffers"
	case PickerDiagnostics:
		return "diagnostics"
	case PickerWorkspaceDiagnostics:
		return "workspace-diagnostics"
	default:
		return "unknown"
	}
}

// TriggerKind says why completion was requested.
type TriggerKind int

const (
	TriggerInvoked TriggerKind = iota
	TriggerCharacter
)

// CompletionTrigger describes a completion request.
type CompletionTrigger struct {
	Kind TriggerKind
	Char rune
}

// CompletionItem is one candidate shown by a completion surface.
type CompletionItem struct {
	Label      string
	Detail     string
	Kind       string
	InsertText string
}

// Diagnostic is a language-server finding within a document.
type Diagnostic struct {
	Span     Span
	Severity Severity
	Message  string
	Source   string
	Code     string
}

// MemoryPressure levels reported by the host.
type MemoryPressure int

const (
	MemoryLow MemoryPressure = iota
	MemoryMedium
	MemoryHigh
	MemoryCritical
)

// String returns the level name.
func (m MemoryPressure) String() string {
	switch m {
	case MemoryLow:
		return "low"
	case MemoryMedium:
		return "medium"
	case MemoryHigh:
		return "high"
	case MemoryCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// CommandSource says where a command invocation came from.
type CommandSource int

const (
	SourceKeyboard CommandSource = iota
	SourcePalette
	SourceMenu
	SourceCore
)

// String returns the source name.
func (s CommandSource) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourcePalette:
		return "palette"
	case SourceMenu:
		return "menu"
	case SourceCore:
		return "core"
	default:
		return "unknown"
	}
}
