package events

import (
	"slices"

	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
	"github.com/dshills/keybridge/internal/types"
)

// View event topics.
const (
	TopicViewSelectionChanged topic.Topic = "view.selection_changed"
	TopicViewFocused          topic.Topic = "view.focused"
	TopicViewScrolled         topic.Topic = "view.scrolled"
	TopicViewCursorMoved      topic.Topic = "view.cursor_moved"
	TopicViewSplitCreated     topic.Topic = "view.split_created"
	TopicViewClosed           topic.Topic = "view.closed"
)

// SelectionChanged is published when a view's selection moves.
type SelectionChanged struct {
	viewEvent

	View    types.ViewID
	Doc     types.DocumentID
	Primary int

	ranges []types.Range
}

// NewSelectionChanged copies ranges into a new event.
func NewSelectionChanged(view types.ViewID, doc types.DocumentID, ranges []types.Range, primary int) SelectionChanged {
	return SelectionChanged{View: view, Doc: doc, Primary: primary, ranges: slices.Clone(ranges)}
}

// Ranges returns a copy of the selection ranges.
func (e SelectionChanged) Ranges() []types.Range {
	return slices.Clone(e.ranges)
}

// PrimaryRange returns the primary range, or a zero range if there is none.
func (e SelectionChanged) PrimaryRange() types.Range {
	if e.Primary < 0 || e.Primary >= len(e.ranges) {
		return types.Range{}
	}
	return e.ranges[e.Primary]
}

func (SelectionChanged) Topic() topic.Topic { return TopicViewSelectionChanged }
func (SelectionChanged) Coalescible() bool  { return true }
func (e SelectionChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicViewSelectionChanged, e.View.String())
}

// ViewFocused is published when keyboard focus moves to a view.
type ViewFocused struct {
	viewEvent

	View     types.ViewID
	Doc      types.DocumentID
	Previous types.ViewID
}

func (ViewFocused) Topic() topic.Topic { return TopicViewFocused }
func (ViewFocused) Coalescible() bool  { return false }
func (e ViewFocused) CoalesceKey() coalesce.Key {
	return keyOf(TopicViewFocused, e.View.String())
}

// ViewScrolled is published when a view's scroll offset changes.
type ViewScrolled struct {
	viewEvent

	View   types.ViewID
	Offset types.Position
}

func (ViewScrolled) Topic() topic.Topic { return TopicViewScrolled }
func (ViewScrolled) Coalescible() bool  { return true }
func (e ViewScrolled) CoalesceKey() coalesce.Key {
	return keyOf(TopicViewScrolled, e.View.String())
}

// CursorMoved is published with the primary cursor's line/column.
type CursorMoved struct {
	viewEvent

	View     types.ViewID
	Doc      types.DocumentID
	Position types.Position
}

func (CursorMoved) Topic() topic.Topic { return TopicViewCursorMoved }
func (CursorMoved) Coalescible() bool  { return true }
func (e CursorMoved) CoalesceKey() coalesce.Key {
	return keyOf(TopicViewCursorMoved, e.View.String())
}

// SplitDirection orients a new split.
type SplitDirection int

const (
	SplitHorizontal SplitDirection = iota
	SplitVertical
)

// SplitCreated is published when a new view is created by splitting.
type SplitCreated struct {
	viewEvent

	View      types.ViewID
	Doc       types.DocumentID
	Direction SplitDirection
}

func (SplitCreated) Topic() topic.Topic { return TopicViewSplitCreated }
func (SplitCreated) Coalescible() bool  { return false }
func (e SplitCreated) CoalesceKey() coalesce.Key {
	return keyOf(TopicViewSplitCreated, e.View.String())
}

// ViewClosed is published when a view is removed.
type ViewClosed struct {
	viewEvent

	View types.ViewID
	Doc  types.DocumentID
}

func (ViewClosed) Topic() topic.Topic { return TopicViewClosed }
func (ViewClosed) Coalescible() bool  { return false }
func (e ViewClosed) CoalesceKey() coalesce.Key {
	return keyOf(TopicViewClosed, e.View.String())
}
