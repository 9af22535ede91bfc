package events

import (
	"slices"

	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
	"github.com/dshills/keybridge/internal/types"
)

// UI event topics.
const (
	TopicUIThemeChanged     topic.Topic = "ui.theme_changed"
	TopicUIWindowResized    topic.Topic = "ui.window_resized"
	TopicUIFocusChanged     topic.Topic = "ui.focus_changed"
	TopicUIOverlayShown     topic.Topic = "ui.overlay.shown"
	TopicUIOverlayHidden    topic.Topic = "ui.overlay.hidden"
	TopicUIPromptRequested  topic.Topic = "ui.prompt_requested"
	TopicUICompletionShown  topic.Topic = "ui.completion.shown"
	TopicUICompletionHidden topic.Topic = "ui.completion.hidden"
)

// Overlay names an overlay surface.
type Overlay string

// Known overlays.
const (
	OverlayPicker     Overlay = "picker"
	OverlayPrompt     Overlay = "prompt"
	OverlayCompletion Overlay = "completion"
	OverlayPalette    Overlay = "palette"
)

// ThemeChanged is published after the core switched theme.
type ThemeChanged struct {
	uiEvent

	Theme string
}

func (ThemeChanged) Topic() topic.Topic { return TopicUIThemeChanged }
func (ThemeChanged) Coalescible() bool  { return true }
func (ThemeChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicUIThemeChanged, "")
}

// WindowResized echoes the editor area size the core is now laid out for.
type WindowResized struct {
	uiEvent

	Width  int
	Height int
}

func (WindowResized) Topic() topic.Topic { return TopicUIWindowResized }
func (WindowResized) Coalescible() bool  { return true }
func (WindowResized) CoalesceKey() coalesce.Key {
	return keyOf(TopicUIWindowResized, "")
}

// FocusChanged reports the host window gaining or losing focus.
type FocusChanged struct {
	uiEvent

	Focused bool
}

func (FocusChanged) Topic() topic.Topic { return TopicUIFocusChanged }
func (FocusChanged) Coalescible() bool  { return false }
func (FocusChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicUIFocusChanged, "")
}

// OverlayShown is published when an overlay opens.
type OverlayShown struct {
	uiEvent

	Overlay Overlay
}

func (OverlayShown) Topic() topic.Topic { return TopicUIOverlayShown }
func (OverlayShown) Coalescible() bool  { return false }
func (e OverlayShown) CoalesceKey() coalesce.Key {
	return keyOf(TopicUIOverlayShown, string(e.Overlay))
}

// OverlayHidden is published when an overlay closes.
type OverlayHidden struct {
	uiEvent

	Overlay Overlay
}

func (OverlayHidden) Topic() topic.Topic { return TopicUIOverlayHidden }
func (OverlayHidden) Coalescible() bool  { return false }
func (e OverlayHidden) CoalesceKey() coalesce.Key {
	return keyOf(TopicUIOverlayHidden, string(e.Overlay))
}

// PromptRequested asks the presentation runtime to show a prompt whose
// behavior is registered in a side table under Prompt.
type PromptRequested struct {
	uiEvent

	Prompt types.PromptID
	Title  string
}

func (PromptRequested) Topic() topic.Topic { return TopicUIPromptRequested }
func (PromptRequested) Coalescible() bool  { return false }
func (e PromptRequested) CoalesceKey() coalesce.Key {
	return keyOf(TopicUIPromptRequested, string(e.Prompt))
}

// CompletionShown reports that completion candidates became visible.
type CompletionShown struct {
	uiEvent

	items []types.CompletionItem
}

// NewCompletionShown copies items into a new event.
func NewCompletionShown(items []types.CompletionItem) CompletionShown {
	return CompletionShown{items: slices.Clone(items)}
}

// Items returns a copy of the candidates.
func (e CompletionShown) Items() []types.CompletionItem {
	return slices.Clone(e.items)
}

func (CompletionShown) Topic() topic.Topic { return TopicUICompletionShown }
func (CompletionShown) Coalescible() bool  { return true }
func (CompletionShown) CoalesceKey() coalesce.Key {
	return keyOf(TopicUICompletionShown, "")
}

// CompletionHidden reports that the completion menu closed.
type CompletionHidden struct {
	uiEvent
}

func (CompletionHidden) Topic() topic.Topic { return TopicUICompletionHidden }
func (CompletionHidden) Coalescible() bool  { return false }
func (CompletionHidden) CoalesceKey() coalesce.Key {
	return keyOf(TopicUICompletionHidden, "")
}
