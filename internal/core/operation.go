package core

import (
	"context"

	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/types"
)

// Operation is a core-native request. Operations are plain values; the
// core applies them in submission order.
type Operation interface {
	coalesce.Item

	// Name identifies the operation kind in logs and failure reports.
	Name() string

	// Correlation returns the id that links the operation to its outcome.
	Correlation() types.Correlation
}

// Applier applies operations. Implementations must be called in order by a
// single goroutine.
type Applier interface {
	Apply(ctx context.Context, op Operation) error
}

// Op carries the fields common to every operation. Embed it first.
type Op struct {
	ID types.Correlation
}

// Correlation implements Operation.
func (o Op) Correlation() types.Correlation { return o.ID }

func opKey(name, id string) coalesce.Key {
	return coalesce.Key{Kind: "op." + name, ID: id}
}

// Press delivers a key stroke to the active view.
type Press struct {
	Op
	Key types.KeyPress
}

// Click places the cursor of View at Pos. Extend grows the selection instead.
type Click struct {
	Op
	View   types.ViewID
	Pos    types.Position
	Extend bool
}

// Scroll moves View's scroll offset by Lines.
type Scroll struct {
	Op
	View  types.ViewID
	Lines int
}

// Run executes a named command.
type Run struct {
	Op
	Command string
	Args    []string
	Source  types.CommandSource
}

// Resize lays the editor out for a new area in cells.
type Resize struct {
	Op
	Width  int
	Height int
}

// SetHostFocus reports the host window's focus state.
type SetHostFocus struct {
	Op
	Focused bool
}

// SetTheme switches the theme.
type SetTheme struct {
	Op
	Theme string
}

// SetFontSize records the host's font size in points.
type SetFontSize struct {
	Op
	Size float64
}

// ReloadPath reloads every unmodified document open at Path.
type ReloadPath struct {
	Op
	Path string
}

// RelievePressure reacts to host memory pressure.
type RelievePressure struct {
	Op
	Level types.MemoryPressure
}

// SetAccessibility applies host accessibility preferences.
type SetAccessibility struct {
	Op
	HighContrast  bool
	ReducedMotion bool
}

// ReportDegradation tells the core a host metric crossed its threshold.
type ReportDegradation struct {
	Op
	Metric    string
	Value     float64
	Threshold float64
}

// FocusView makes View the active view.
type FocusView struct {
	Op
	View types.ViewID
}

// SubmitPrompt answers an open prompt. Cancel discards the prompt.
type SubmitPrompt struct {
	Op
	Prompt types.PromptID
	Text   string
	Cancel bool
}

func (Press) Name() string             { return "press" }
func (Click) Name() string             { return "click" }
func (Scroll) Name() string            { return "scroll" }
func (Run) Name() string               { return "run" }
func (Resize) Name() string            { return "resize" }
func (SetHostFocus) Name() string      { return "set_host_focus" }
func (SetTheme) Name() string          { return "set_theme" }
func (SetFontSize) Name() string       { return "set_font_size" }
func (ReloadPath) Name() string        { return "reload_path" }
func (RelievePressure) Name() string   { return "relieve_pressure" }
func (SetAccessibility) Name() string  { return "set_accessibility" }
func (ReportDegradation) Name() string { return "report_degradation" }
func (FocusView) Name() string         { return "focus_view" }
func (SubmitPrompt) Name() string      { return "submit_prompt" }

func (Press) Coalescible() bool             { return false }
func (Click) Coalescible() bool             { return false }
func (Scroll) Coalescible() bool            { return false }
func (Run) Coalescible() bool               { return false }
func (Resize) Coalescible() bool            { return true }
func (SetHostFocus) Coalescible() bool      { return false }
func (SetTheme) Coalescible() bool          { return true }
func (SetFontSize) Coalescible() bool       { return true }
func (ReloadPath) Coalescible() bool        { return true }
func (RelievePressure) Coalescible() bool   { return false }
func (SetAccessibility) Coalescible() bool  { return true }
func (ReportDegradation) Coalescible() bool { return true }
func (FocusView) Coalescible() bool         { return false }
func (SubmitPrompt) Coalescible() bool      { return false }

func (o Press) CoalesceKey() coalesce.Key             { return opKey(o.Name(), string(o.ID)) }
func (o Click) CoalesceKey() coalesce.Key             { return opKey(o.Name(), string(o.ID)) }
func (o Scroll) CoalesceKey() coalesce.Key            { return opKey(o.Name(), string(o.ID)) }
func (o Run) CoalesceKey() coalesce.Key               { return opKey(o.Name(), string(o.ID)) }
func (o Resize) CoalesceKey() coalesce.Key            { return opKey(o.Name(), "") }
func (o SetHostFocus) CoalesceKey() coalesce.Key      { return opKey(o.Name(), string(o.ID)) }
func (o SetTheme) CoalesceKey() coalesce.Key          { return opKey(o.Name(), "") }
func (o SetFontSize) CoalesceKey() coalesce.Key       { return opKey(o.Name(), "") }
func (o ReloadPath) CoalesceKey() coalesce.Key        { return opKey(o.Name(), o.Path) }
func (o RelievePressure) CoalesceKey() coalesce.Key   { return opKey(o.Name(), string(o.ID)) }
func (o SetAccessibility) CoalesceKey() coalesce.Key  { return opKey(o.Name(), "") }
func (o ReportDegradation) CoalesceKey() coalesce.Key { return opKey(o.Name(), o.Metric) }
func (o FocusView) CoalesceKey() coalesce.Key         { return opKey(o.Name(), string(o.ID)) }
func (o SubmitPrompt) CoalesceKey() coalesce.Key      { return opKey(o.Name(), string(o.ID)) }
