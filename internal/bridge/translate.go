package bridge

import (
	"unicode"

	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/types"
)

// Translator maps one raw notification to domain events. It runs on the
// core loop goroutine and must not block or retain n.
type Translator func(n core.Notification) ([]events.Event, error)

// Translate is the built-in translation. It reads live core state only
// while building the events; every returned event is a copy.
func Translate(n core.Notification) ([]events.Event, error) {
	switch n := n.(type) {
	case core.DocumentDidOpen:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		return one(events.DocumentOpened{Doc: n.Doc.ID, Path: n.Doc.Path, Language: n.Doc.Language}), nil
	case core.DocumentDidChange:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		return []events.Event{
			events.DocumentChanged{
				Doc:      n.Doc.ID,
				Revision: n.Doc.Revision(),
				Change:   classifyChange(n.Changes),
				Edited:   n.Changes.Edited(),
				Modified: n.Doc.Modified(),
			},
			events.RedrawRequested{Reason: events.RedrawContent},
		}, nil
	case core.DocumentDidClose:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		return one(events.DocumentClosed{Doc: n.Doc.ID, WasModified: n.Doc.Modified()}), nil
	case core.DocumentDidSave:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		if n.Err != nil {
			return one(events.DocumentSaveFailed{Doc: n.Doc.ID, Path: n.Doc.Path, Reason: n.Err.Error()}), nil
		}
		return one(events.DocumentSaved{Doc: n.Doc.ID, Path: n.Doc.Path, Revision: n.Doc.Revision()}), nil
	case core.LanguageDidChange:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		return one(events.LanguageDetected{Doc: n.Doc.ID, Language: n.Doc.Language}), nil
	case core.DiagnosticsDidChange:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		return one(events.NewDiagnosticsUpdated(n.Doc.ID, n.Doc.Diagnostics())), nil

	case core.SelectionDidChange:
		v := n.View
		if v == nil || v.Doc == nil {
			return nil, untranslatable(n, "missing view")
		}
		return []events.Event{
			events.NewSelectionChanged(v.ID, v.Doc.ID, v.Selection(), v.Primary()),
			events.CursorMoved{View: v.ID, Doc: v.Doc.ID, Position: v.Doc.PositionOf(v.Cursor())},
		}, nil
	case core.ViewDidFocus:
		v := n.View
		if v == nil || v.Doc == nil {
			return nil, untranslatable(n, "missing view")
		}
		ev := events.ViewFocused{View: v.ID, Doc: v.Doc.ID}
		if n.Previous != nil {
			ev.Previous = n.Previous.ID
		}
		return one(ev), nil
	case core.ViewDidScroll:
		if n.View == nil {
			return nil, untranslatable(n, "missing view")
		}
		return one(events.ViewScrolled{View: n.View.ID, Offset: n.View.Scroll()}), nil
	case core.ViewDidSplit:
		v := n.View
		if v == nil || v.Doc == nil {
			return nil, untranslatable(n, "missing view")
		}
		dir := events.SplitHorizontal
		if n.Vertical {
			dir = events.SplitVertical
		}
		return one(events.SplitCreated{View: v.ID, Doc: v.Doc.ID, Direction: dir}), nil
	case core.ViewDidClose:
		v := n.View
		if v == nil || v.Doc == nil {
			return nil, untranslatable(n, "missing view")
		}
		return one(events.ViewClosed{View: v.ID, Doc: v.Doc.ID}), nil

	case core.ModeDidSwitch:
		ctx := events.ModeByUser
		if n.ByCommand {
			ctx = events.ModeByCommand
		}
		return []events.Event{
			events.ModeChanged{Old: n.Old, New: n.New, Context: ctx},
			events.RedrawRequested{Reason: events.RedrawMode},
		}, nil

	case core.ServerDidInitialize:
		if n.Server == nil {
			return nil, untranslatable(n, "missing server")
		}
		return one(events.ServerInitialized{Server: n.Server.ID, Name: n.Server.Name}), nil
	case core.ServerDidExit:
		if n.Server == nil {
			return nil, untranslatable(n, "missing server")
		}
		return one(events.ServerExited{Server: n.Server.ID, Name: n.Server.Name}), nil
	case core.ServerDidFail:
		if n.Server == nil || n.Err == nil {
			return nil, untranslatable(n, "missing server or error")
		}
		return one(events.ServerError{Server: n.Server.ID, Message: n.Err.Error()}), nil
	case core.ServerStartRequested:
		if n.Name == "" {
			return nil, untranslatable(n, "missing server name")
		}
		return one(events.ServerStartupRequested{Root: n.Root, Server: n.Name, Language: n.Language}), nil
	case core.ProgressDidReport:
		return translateProgress(n)

	case core.PostInsertChar:
		v := n.View
		if v == nil || v.Doc == nil {
			return nil, untranslatable(n, "missing view")
		}
		if !triggersCompletion(n.Char) {
			return nil, nil
		}
		return one(events.CompletionRequested{
			Doc:     v.Doc.ID,
			View:    v.ID,
			Trigger: types.CompletionTrigger{Kind: types.TriggerCharacter, Char: n.Char},
		}), nil
	case core.PostCommand:
		if kind, ok := pickers[n.Name]; ok {
			return one(events.PickerRequested{Picker: kind}), nil
		}
		return nil, nil
	case core.CommandDidRun:
		return one(events.CommandExecuted{Command: n.Command, Correlation: n.Correlation, Source: n.Source}), nil
	case core.OperationDidFail:
		reason := "unknown error"
		if n.Err != nil {
			reason = n.Err.Error()
		}
		return one(events.OperationFailed{Operation: n.Operation, Correlation: n.Correlation, Reason: reason}), nil

	case core.FileSystemChanged:
		return translateFile(n)
	case core.WorkingDirectoryDidChange:
		return one(events.WorkingDirectoryChanged{Path: n.Path}), nil

	case core.HeadDidChange:
		return one(events.BranchChanged{Root: n.Root, Branch: n.Branch}), nil
	case core.WorkTreeDidChange:
		return one(events.NewVCSStatusChanged(n.Root, n.Files)), nil
	case core.DiffDidChange:
		if n.Doc == nil {
			return nil, untranslatable(n, "missing document")
		}
		return one(events.NewDiffUpdated(n.Doc.ID, n.Hunks)), nil

	case core.StatusDidChange:
		return one(events.StatusChanged{Message: n.Message, Severity: n.Severity}), nil
	case core.ThemeDidChange:
		return []events.Event{
			events.ThemeChanged{Theme: n.Theme},
			events.RedrawRequested{Reason: events.RedrawTheme},
		}, nil
	case core.AreaDidResize:
		return []events.Event{
			events.WindowResized{Width: n.Width, Height: n.Height},
			events.RedrawRequested{Reason: events.RedrawResize},
		}, nil
	case core.HostFocusDidChange:
		return one(events.FocusChanged{Focused: n.Focused}), nil
	case core.PromptDidOpen:
		if n.Prompt == "" {
			return nil, untranslatable(n, "missing prompt id")
		}
		return one(events.PromptRequested{Prompt: n.Prompt, Title: n.Title}), nil
	case core.QuitRequested:
		return one(events.ShutdownRequested{Reason: events.ShutdownUser, Force: n.Force}), nil
	}
	return nil, untranslatable(n, "unknown notification")
}

func one(ev events.Event) []events.Event {
	return []events.Event{ev}
}

// classifyChange summarizes a change set. Retain steps count toward the
// step total, so an insert or delete in the middle of a document is still a
// single-kind change, while anything longer is bulk.
func classifyChange(cs core.ChangeSet) types.ChangeType {
	ops := cs.Ops()
	if len(ops) == 0 {
		return types.ChangeBulk
	}
	var insert, del bool
	for _, op := range ops {
		switch op.Kind {
		case core.OpInsert:
			insert = true
		case core.OpDelete:
			del = true
		}
	}
	switch {
	case insert && del:
		return types.ChangeReplace
	case insert && len(ops) <= 2:
		return types.ChangeInsert
	case del && len(ops) <= 2:
		return types.ChangeDelete
	default:
		return types.ChangeBulk
	}
}

var pickers = map[string]types.PickerKind{
	"file_picker":                  types.PickerFiles,
	"buffer_picker":                types.PickerBuffers,
	"diagnostics_picker":           types.PickerDiagnostics,
	"workspace_diagnostics_picker": types.PickerWorkspaceDiagnostics,
}

func triggersCompletion(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func translateProgress(n core.ProgressDidReport) ([]events.Event, error) {
	if n.Server == nil || n.Token == "" {
		return nil, untranslatable(n, "missing server or token")
	}
	id := n.Server.ID
	switch n.Phase {
	case core.ProgressBegin:
		return one(events.ProgressStarted{Server: id, Token: n.Token, Title: n.Title}), nil
	case core.ProgressReport:
		return one(events.ProgressUpdated{Server: id, Token: n.Token, Message: n.Message, Percent: n.Percent}), nil
	case core.ProgressEnd:
		return one(events.ProgressCompleted{Server: id, Token: n.Token, Message: n.Message}), nil
	}
	return nil, untranslatable(n, "unknown progress phase")
}

func translateFile(n core.FileSystemChanged) ([]events.Event, error) {
	if n.Path == "" {
		return nil, untranslatable(n, "missing path")
	}
	switch n.Op {
	case core.FileCreated:
		return one(events.FileCreated{Path: n.Path}), nil
	case core.FileRemoved:
		return one(events.FileDeleted{Path: n.Path}), nil
	case core.FileRenamed:
		if n.OldPath == "" {
			return one(events.FileDeleted{Path: n.Path}), nil
		}
		return one(events.FileRenamed{From: n.OldPath, To: n.Path}), nil
	case core.FileWritten:
		return one(events.FileModified{Path: n.Path}), nil
	}
	return nil, untranslatable(n, "unknown file operation")
}
