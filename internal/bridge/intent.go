package bridge

import (
	"slices"

	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/types"
)

// Intent is a presentation-originated request for the core. The set is
// closed; see the types below.
type Intent interface {
	intent()
}

// KeyInput is a key press in the editor area.
type KeyInput struct {
	Key types.KeyPress
}

// PointerKind distinguishes pointer gestures.
type PointerKind int

const (
	PointerClick PointerKind = iota
	PointerDrag
	PointerScroll
)

// PointerAction is a mouse gesture over a view. Lines is used by
// PointerScroll; negative values scroll up.
type PointerAction struct {
	Kind  PointerKind
	View  types.ViewID
	Pos   types.Position
	Lines int
}

// CommandInvocation runs a named command.
type CommandInvocation struct {
	Name   string
	Args   []string
	Source types.CommandSource
}

// WindowResized reports the size of the editor area in cells.
type WindowResized struct {
	Width, Height int
}

// FocusChanged reports the host window gaining or losing focus.
type FocusChanged struct {
	Focused bool
}

// ThemeChanged selects a theme from the host.
type ThemeChanged struct {
	Theme string
}

// FontSizeChanged reports a new font size in points.
type FontSizeChanged struct {
	Size float64
}

// ExternalFileChanged reports that a file changed behind the core's back.
type ExternalFileChanged struct {
	Path string
}

// MemoryPressure reports host memory pressure.
type MemoryPressure struct {
	Level types.MemoryPressure
}

// AccessibilityChanged reports host accessibility settings.
type AccessibilityChanged struct {
	HighContrast  bool
	ReducedMotion bool
}

// PerformanceDegraded reports a frame-time or similar metric over budget.
type PerformanceDegraded struct {
	Metric    string
	Value     float64
	Threshold float64
}

// ViewSelected moves focus to a view without moving its cursor.
type ViewSelected struct {
	View types.ViewID
}

// PromptSubmitted answers a prompt previously requested by the core.
type PromptSubmitted struct {
	Prompt types.PromptID
	Text   string
	Cancel bool
}

func (KeyInput) intent()             {}
func (PointerAction) intent()        {}
func (CommandInvocation) intent()    {}
func (WindowResized) intent()        {}
func (FocusChanged) intent()         {}
func (ThemeChanged) intent()         {}
func (FontSizeChanged) intent()      {}
func (ExternalFileChanged) intent()  {}
func (MemoryPressure) intent()       {}
func (AccessibilityChanged) intent() {}
func (PerformanceDegraded) intent()  {}
func (PromptSubmitted) intent()      {}
func (ViewSelected) intent()         {}

// Operation translates an intent into the core operation carrying id.
func Operation(in Intent, id types.Correlation) (core.Operation, error) {
	op := core.Op{ID: id}
	switch in := in.(type) {
	case KeyInput:
		if in.Key.Key == types.KeyRune && in.Key.Rune == 0 {
			return nil, untranslatable(in, "rune key without rune")
		}
		return core.Press{Op: op, Key: in.Key}, nil
	case PointerAction:
		if in.View == 0 {
			return nil, untranslatable(in, "missing view")
		}
		switch in.Kind {
		case PointerClick, PointerDrag:
			return core.Click{Op: op, View: in.View, Pos: in.Pos, Extend: in.Kind == PointerDrag}, nil
		case PointerScroll:
			return core.Scroll{Op: op, View: in.View, Lines: in.Lines}, nil
		}
		return nil, untranslatable(in, "unknown pointer kind")
	case CommandInvocation:
		if in.Name == "" {
			return nil, untranslatable(in, "empty command name")
		}
		return core.Run{Op: op, Command: in.Name, Args: slices.Clone(in.Args), Source: in.Source}, nil
	case WindowResized:
		if in.Width <= 0 || in.Height <= 0 {
			return nil, untranslatable(in, "non-positive size")
		}
		return core.Resize{Op: op, Width: in.Width, Height: in.Height}, nil
	case FocusChanged:
		return core.SetHostFocus{Op: op, Focused: in.Focused}, nil
	case ThemeChanged:
		if in.Theme == "" {
			return nil, untranslatable(in, "empty theme")
		}
		return core.SetTheme{Op: op, Theme: in.Theme}, nil
	case FontSizeChanged:
		if in.Size <= 0 {
			return nil, untranslatable(in, "non-positive font size")
		}
		return core.SetFontSize{Op: op, Size: in.Size}, nil
	case ExternalFileChanged:
		if in.Path == "" {
			return nil, untranslatable(in, "missing path")
		}
		return core.ReloadPath{Op: op, Path: in.Path}, nil
	case MemoryPressure:
		return core.RelievePressure{Op: op, Level: in.Level}, nil
	case AccessibilityChanged:
		return core.SetAccessibility{Op: op, HighContrast: in.HighContrast, ReducedMotion: in.ReducedMotion}, nil
	case PerformanceDegraded:
		if in.Metric == "" {
			return nil, untranslatable(in, "missing metric")
		}
		return core.ReportDegradation{Op: op, Metric: in.Metric, Value: in.Value, Threshold: in.Threshold}, nil
	case ViewSelected:
		if in.View == 0 {
			return nil, untranslatable(in, "missing view")
		}
		return core.FocusView{Op: op, View: in.View}, nil
	case PromptSubmitted:
		if in.Prompt == "" {
			return nil, untranslatable(in, "missing prompt id")
		}
		return core.SubmitPrompt{Op: op, Prompt: in.Prompt, Text: in.Text, Cancel: in.Cancel}, nil
	}
	return nil, untranslatable(in, "unknown intent")
}
