package types

// Position is a zero-based line/column location.
type Position struct {
	Line   int
	Column int
}

// Range is a selection expressed as character offsets. Anchor stays put while
// Head moves; a cursor is a Range with Anchor == Head.
type Range struct {
	Anchor int
	Head   int
}

// Point returns a collapsed range at offset.
func Point(offset int) Range {
	return Range{Anchor: offset, Head: offset}
}

// Start returns the smaller end of the range.
func (r Range) Start() int {
	return min(r.Anchor, r.Head)
}

// End returns the larger end of the range.
func (r Range) End() int {
	return max(r.Anchor, r.Head)
}

// Len returns the number of characters covered.
func (r Range) Len() int {
	return r.End() - r.Start()
}

// Span is a line/column range, end exclusive.
type Span struct {
	Start Position
	End   Position
}

// Snapshot is an immutable copy of a document's state at one revision.
type Snapshot struct {
	Doc      DocumentID
	Revision uint64
	Path     string
	Language string
	Text     string
	Modified bool
}
