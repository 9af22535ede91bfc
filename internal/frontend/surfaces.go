package frontend

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/dshills/keybridge/internal/bridge"
	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/types"
)

var (
	_ capability.CompletionSurface = (*completion)(nil)
	_ capability.StatusSurface     = (*App)(nil)
	_ capability.PickerSurface     = (*App)(nil)
)

// completion is the completion popup.
type completion struct {
	mu       sync.Mutex
	items    []types.CompletionItem
	selected int
	prefix   string
	app      *App
}

func (c *completion) Show(items []types.CompletionItem) {
	c.show(items, "")
}

// show opens the popup; prefix is the part of every item already typed.
func (c *completion) show(items []types.CompletionItem, prefix string) {
	c.mu.Lock()
	c.items = slices.Clone(items)
	c.selected = 0
	c.prefix = prefix
	c.mu.Unlock()
	c.app.model.touch()
	c.app.publish(events.NewCompletionShown(items))
}

func (c *completion) Hide() {
	c.mu.Lock()
	was := len(c.items) > 0
	c.items = nil
	c.prefix = ""
	c.mu.Unlock()
	if was {
		c.app.model.touch()
		c.app.publish(events.CompletionHidden{})
	}
}

func (c *completion) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) > 0
}

func (c *completion) snapshot() ([]types.CompletionItem, int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items), c.selected, c.prefix
}

func (c *completion) move(delta int) {
	c.mu.Lock()
	if n := len(c.items); n > 0 {
		c.selected = (c.selected + delta + n) % n
	}
	c.mu.Unlock()
	c.app.model.touch()
}

// accept returns the text still to be typed for the selected item.
func (c *completion) accept() (string, bool) {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return "", false
	}
	item := c.items[c.selected]
	prefix := c.prefix
	c.mu.Unlock()

	text := item.InsertText
	if text == "" {
		text = item.Label
	}
	c.Hide()
	if len(prefix) > len(text) {
		return "", false
	}
	return text[len(prefix):], true
}

// SetStatus implements capability.StatusSurface.
func (a *App) SetStatus(message string, severity types.Severity) {
	a.model.Status = message
	a.model.StatusSeverity = severity
	a.model.touch()
}

// pickerItem is one picker row; choosing it runs Commands in order.
type pickerItem struct {
	Label    string
	Commands []bridge.CommandInvocation
}

type picker struct {
	kind     types.PickerKind
	items    []pickerItem
	selected int
}

// OpenPicker implements capability.PickerSurface.
func (a *App) OpenPicker(kind types.PickerKind) error {
	items, err := a.pickerItems(kind)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.SetStatus(fmt.Sprintf("%s: nothing to pick", kind), types.SeverityInfo)
		return nil
	}
	a.picker = &picker{kind: kind, items: items}
	a.model.touch()
	a.publish(events.OverlayShown{Overlay: events.OverlayPicker})
	return nil
}

func (a *App) closePicker() {
	if a.picker == nil {
		return
	}
	a.picker = nil
	a.model.touch()
	a.publish(events.OverlayHidden{Overlay: events.OverlayPicker})
}

func (a *App) pickerItems(kind types.PickerKind) ([]pickerItem, error) {
	docs, ok := capability.Lookup[capability.DocumentAccess](a.caps)
	if !ok {
		return nil, fmt.Errorf("picker %s: %w", kind, capability.ErrNotFound)
	}
	open := func(path string) bridge.CommandInvocation {
		return bridge.CommandInvocation{Name: "open", Args: []string{path}, Source: types.SourcePalette}
	}
	gotoLine := func(line int) bridge.CommandInvocation {
		return bridge.CommandInvocation{Name: "goto", Args: []string{strconv.Itoa(line + 1)}, Source: types.SourcePalette}
	}

	var items []pickerItem
	switch kind {
	case types.PickerBuffers:
		for _, id := range docs.Documents() {
			snap, ok := docs.TextFor(id)
			if !ok || snap.Path == "" {
				continue
			}
			label := a.relative(snap.Path)
			if snap.Modified {
				label += " [+]"
			}
			items = append(items, pickerItem{Label: label, Commands: []bridge.CommandInvocation{open(snap.Path)}})
		}
	case types.PickerFiles:
		seen := make(map[string]bool)
		for _, id := range docs.Documents() {
			if snap, ok := docs.TextFor(id); ok && snap.Path != "" {
				seen[snap.Path] = true
			}
		}
		for _, f := range a.model.SortedFiles() {
			seen[f] = true
		}
		paths := make([]string, 0, len(seen))
		for p := range seen {
			paths = append(paths, p)
		}
		slices.Sort(paths)
		for _, p := range paths {
			items = append(items, pickerItem{Label: a.relative(p), Commands: []bridge.CommandInvocation{open(p)}})
		}
	case types.PickerDiagnostics:
		v, ok := a.model.Active()
		if !ok {
			return nil, nil
		}
		for _, d := range a.model.doc(v.Doc).Diagnostics {
			items = append(items, pickerItem{
				Label:    fmt.Sprintf("%d:%d %s %s", d.Span.Start.Line+1, d.Span.Start.Column+1, d.Severity, d.Message),
				Commands: []bridge.CommandInvocation{gotoLine(d.Span.Start.Line)},
			})
		}
	case types.PickerWorkspaceDiagnostics:
		for _, id := range docs.Documents() {
			snap, ok := docs.TextFor(id)
			if !ok || snap.Path == "" {
				continue
			}
			for _, d := range a.model.doc(id).Diagnostics {
				items = append(items, pickerItem{
					Label:    fmt.Sprintf("%s:%d %s %s", a.relative(snap.Path), d.Span.Start.Line+1, d.Severity, d.Message),
					Commands: []bridge.CommandInvocation{open(snap.Path), gotoLine(d.Span.Start.Line)},
				})
			}
		}
	default:
		return nil, fmt.Errorf("unknown picker %d", kind)
	}
	return items, nil
}

func (a *App) relative(path string) string {
	if a.root == "" {
		return path
	}
	if rel, err := filepath.Rel(a.root, path); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
		return rel
	}
	return path
}

// prompt is the line editor shown for a core prompt.
type prompt struct {
	id    types.PromptID
	title string
	text  []rune
}
