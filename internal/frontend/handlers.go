package frontend

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/dshills/keybridge/internal/bridge"
	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/event"
	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/types"
)

// maxCompletions bounds the completion popup.
const maxCompletions = 8

func (a *App) registerHandlers(bus *event.Bus) error {
	handlers := map[events.Domain]func(context.Context, events.Event) error{
		events.DomainDocument:  a.onDocument,
		events.DomainView:      a.onView,
		events.DomainEditor:    a.onEditor,
		events.DomainLSP:       a.onLSP,
		events.DomainUI:        a.onUI,
		events.DomainWorkspace: a.onWorkspace,
		events.DomainVCS:       a.onVCS,
	}
	for _, d := range events.Domains {
		if _, err := bus.RegisterFunc(d.Topic(), handlers[d]); err != nil {
			return fmt.Errorf("register %s handler: %w", d, err)
		}
	}
	return nil
}

func (a *App) onDocument(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.DocumentOpened:
		d := m.doc(ev.Doc)
		d.Path, d.Language = ev.Path, ev.Language
		if ev.Path != "" {
			m.Files[ev.Path] = struct{}{}
		}
	case events.DocumentChanged:
		d := m.doc(ev.Doc)
		d.Revision, d.Modified = ev.Revision, ev.Modified
	case events.DocumentClosed:
		delete(m.Docs, ev.Doc)
	case events.DocumentSaved:
		d := m.doc(ev.Doc)
		d.Path, d.Revision, d.Modified = ev.Path, ev.Revision, false
		m.Files[ev.Path] = struct{}{}
		a.status(fmt.Sprintf("wrote %s", a.relative(ev.Path)), types.SeverityInfo)
	case events.DocumentSaveFailed:
		a.status(fmt.Sprintf("save failed: %s", ev.Reason), types.SeverityError)
	case events.LanguageDetected:
		m.doc(ev.Doc).Language = ev.Language
	case events.DiagnosticsUpdated:
		d := m.doc(ev.Doc)
		d.Diagnostics = ev.Diagnostics()
		d.Counts = ev.Counts
	}
	m.touch()
	return nil
}

func (a *App) onView(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.SelectionChanged:
		v := m.view(ev.View)
		v.Doc = ev.Doc
		v.Selection = ev.Ranges()
	case events.CursorMoved:
		v := m.view(ev.View)
		v.Doc, v.Cursor = ev.Doc, ev.Position
	case events.ViewFocused:
		m.ActiveView = ev.View
		m.view(ev.View).Doc = ev.Doc
	case events.ViewScrolled:
		m.view(ev.View).Scroll = ev.Offset
	case events.SplitCreated:
		m.view(ev.View).Doc = ev.Doc
	case events.ViewClosed:
		delete(m.Views, ev.View)
		if m.ActiveView == ev.View {
			m.ActiveView = 0
		}
	}
	m.touch()
	return nil
}

func (a *App) onEditor(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.ModeChanged:
		m.Mode = ev.New
		if ev.New != types.ModeInsert {
			a.completion.Hide()
		}
	case events.CommandExecuted:
		a.logger.Debug("command executed", "command", ev.Command, "correlation", ev.Correlation)
	case events.OperationFailed:
		a.status(fmt.Sprintf("%s: %s", ev.Operation, ev.Reason), types.SeverityError)
	case events.StatusChanged:
		a.status(ev.Message, ev.Severity)
	case events.RedrawRequested:
	case events.ShutdownRequested:
		m.quit = true
	case events.CompletionRequested:
		a.complete(ev)
	case events.PickerRequested:
		surface, ok := capability.Lookup[capability.PickerSurface](a.caps)
		if !ok {
			return fmt.Errorf("picker %s: %w", ev.Picker, capability.ErrNotFound)
		}
		return surface.OpenPicker(ev.Picker)
	}
	m.touch()
	return nil
}

func (a *App) onLSP(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.ServerStartupRequested:
		a.submit(bridge.CommandInvocation{Name: "lsp-start", Args: []string{ev.Language}, Source: types.SourceCore})
	case events.ServerInitialized:
		a.status(fmt.Sprintf("%s ready", ev.Name), types.SeverityInfo)
	case events.ServerExited:
		a.status(fmt.Sprintf("%s exited", ev.Name), types.SeverityInfo)
	case events.ServerError:
		a.status(ev.Message, types.SeverityError)
	case events.ProgressStarted:
		m.Progress[ev.Token] = ev.Title
	case events.ProgressUpdated:
		m.Progress[ev.Token] = fmt.Sprintf("%s %d%%", ev.Message, ev.Percent)
	case events.ProgressCompleted:
		delete(m.Progress, ev.Token)
	}
	m.touch()
	return nil
}

func (a *App) onUI(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.ThemeChanged:
		m.Theme = ev.Theme
	case events.FocusChanged:
		m.Focused = ev.Focused
	case events.PromptRequested:
		a.prompt = &prompt{id: ev.Prompt, title: ev.Title}
		a.publish(events.OverlayShown{Overlay: events.OverlayPrompt})
	case events.OverlayShown, events.OverlayHidden, events.CompletionShown, events.CompletionHidden, events.WindowResized:
		return nil
	}
	m.touch()
	return nil
}

func (a *App) onWorkspace(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.FileCreated:
		m.Files[ev.Path] = struct{}{}
	case events.FileModified:
		m.Files[ev.Path] = struct{}{}
	case events.FileDeleted:
		delete(m.Files, ev.Path)
	case events.FileRenamed:
		delete(m.Files, ev.From)
		m.Files[ev.To] = struct{}{}
	case events.WorkingDirectoryChanged:
		a.root = ev.Path
		a.status("cwd "+ev.Path, types.SeverityInfo)
	}
	m.touch()
	return nil
}

func (a *App) onVCS(_ context.Context, ev events.Event) error {
	m := a.model
	switch ev := ev.(type) {
	case events.BranchChanged:
		m.Branch = ev.Branch
	case events.DiffUpdated:
		m.doc(ev.Doc).Hunks = len(ev.Hunks())
	case events.VCSStatusChanged:
		a.logger.Debug("work tree status", "root", ev.Root, "files", len(ev.Files()))
	}
	m.touch()
	return nil
}

func (a *App) status(msg string, sev types.Severity) {
	surface, ok := capability.Lookup[capability.StatusSurface](a.caps)
	if !ok {
		a.SetStatus(msg, sev)
		return
	}
	surface.SetStatus(msg, sev)
}

// complete offers words from the document that extend the word before the
// cursor.
func (a *App) complete(ev events.CompletionRequested) {
	docs, ok := capability.Lookup[capability.DocumentAccess](a.caps)
	if !ok {
		return
	}
	snap, ok := docs.TextFor(ev.Doc)
	if !ok {
		return
	}
	v, ok := a.model.Views[ev.View]
	if !ok {
		return
	}
	prefix := wordBefore(snap.Text, v.Cursor)
	items := candidates(snap.Text, prefix)
	if len(items) == 0 {
		a.completion.Hide()
		return
	}
	a.completion.show(items, prefix)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBefore returns the word characters immediately left of pos.
func wordBefore(text string, pos types.Position) string {
	lines := strings.Split(text, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ""
	}
	line := []rune(lines[pos.Line])
	end := min(max(pos.Column, 0), len(line))
	start := end
	for start > 0 && isWord(line[start-1]) {
		start--
	}
	return string(line[start:end])
}

func candidates(text, prefix string) []types.CompletionItem {
	if prefix == "" {
		return nil
	}
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !isWord(r) }) {
		if w == prefix || seen[w] || !strings.HasPrefix(w, prefix) {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	slices.Sort(words)
	if len(words) > maxCompletions {
		words = words[:maxCompletions]
	}
	items := make([]types.CompletionItem, len(words))
	for i, w := range words {
		items[i] = types.CompletionItem{Label: w, Kind: "word", InsertText: w}
	}
	return items
}
