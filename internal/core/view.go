package core

import (
	"slices"

	"github.com/dshills/keybridge/internal/types"
)

// View is a window onto a document. It is owned by the loop goroutine.
type View struct {
	ID  types.ViewID
	Doc *Document

	selection []types.Range
	primary   int
	scroll    types.Position
}

func newView(id types.ViewID, doc *Document) *View {
	return &View{ID: id, Doc: doc, selection: []types.Range{types.Point(0)}}
}

// Selection returns the live selection ranges.
func (v *View) Selection() []types.Range {
	return v.selection
}

// Primary returns the index of the primary range.
func (v *View) Primary() int {
	return v.primary
}

// PrimaryRange returns the primary selection range.
func (v *View) PrimaryRange() types.Range {
	return v.selection[v.primary]
}

// Cursor returns the head of the primary range.
func (v *View) Cursor() int {
	return v.selection[v.primary].Head
}

// Scroll returns the first visible line and column.
func (v *View) Scroll() types.Position {
	return v.scroll
}

func (v *View) setCursor(offset int) {
	offset = clamp(offset, 0, v.Doc.Len())
	v.selection = []types.Range{types.Point(offset)}
	v.primary = 0
}

func (v *View) extendTo(offset int) {
	offset = clamp(offset, 0, v.Doc.Len())
	r := v.selection[v.primary]
	r.Head = offset
	v.selection[v.primary] = r
}

func (v *View) collapse() {
	v.setCursor(v.Cursor())
}

func (v *View) setSelection(ranges []types.Range, primary int) {
	if len(ranges) == 0 {
		v.setCursor(0)
		return
	}
	n := v.Doc.Len()
	v.selection = slices.Clone(ranges)
	for i := range v.selection {
		v.selection[i].Anchor = clamp(v.selection[i].Anchor, 0, n)
		v.selection[i].Head = clamp(v.selection[i].Head, 0, n)
	}
	v.primary = clamp(primary, 0, len(v.selection)-1)
}

func (v *View) mapThrough(cs ChangeSet) {
	for i, r := range v.selection {
		v.selection[i] = types.Range{Anchor: cs.mapOffset(r.Anchor), Head: cs.mapOffset(r.Head)}
	}
}

// follow scrolls so the cursor line is within height visible lines and
// reports whether the offset changed.
func (v *View) follow(height int) bool {
	if height <= 0 {
		return false
	}
	line := v.Doc.PositionOf(v.Cursor()).Line
	prev := v.scroll
	switch {
	case line < v.scroll.Line:
		v.scroll.Line = line
	case line >= v.scroll.Line+height:
		v.scroll.Line = line - height + 1
	}
	return v.scroll != prev
}

func (v *View) scrollBy(lines int) bool {
	prev := v.scroll
	v.scroll.Line = clamp(v.scroll.Line+lines, 0, v.Doc.LineCount()-1)
	return v.scroll != prev
}
