package core

import (
	"slices"

	"github.com/dshills/keybridge/internal/types"
)

// OpKind is the kind of one change-set step.
type OpKind int

const (
	OpRetain OpKind = iota
	OpInsert
	OpDelete
)

// ChangeOp is one step of a ChangeSet. Retain and Delete use N; Insert uses
// Text.
type ChangeOp struct {
	Kind OpKind
	N    int
	Text string
}

// ChangeSet describes an edit as a sequence of retain, insert and delete
// steps over the old text. Characters past the last step are retained.
type ChangeSet struct {
	ops []ChangeOp
}

// Retain appends a retain step.
func (c *ChangeSet) Retain(n int) *ChangeSet {
	if n > 0 {
		c.ops = append(c.ops, ChangeOp{Kind: OpRetain, N: n})
	}
	return c
}

// Insert appends an insert step.
func (c *ChangeSet) Insert(text string) *ChangeSet {
	if text != "" {
		c.ops = append(c.ops, ChangeOp{Kind: OpInsert, Text: text})
	}
	return c
}

// Delete appends a delete step.
func (c *ChangeSet) Delete(n int) *ChangeSet {
	if n > 0 {
		c.ops = append(c.ops, ChangeOp{Kind: OpDelete, N: n})
	}
	return c
}

// Ops returns a copy of the steps.
func (c ChangeSet) Ops() []ChangeOp {
	return slices.Clone(c.ops)
}

// IsEmpty reports whether the change set has no steps.
func (c ChangeSet) IsEmpty() bool {
	return len(c.ops) == 0
}

// Insertion returns a change set inserting text at offset.
func Insertion(offset int, text string) ChangeSet {
	var c ChangeSet
	c.Retain(offset).Insert(text)
	return c
}

// Deletion returns a change set deleting the characters in [from, to).
func Deletion(from, to int) ChangeSet {
	var c ChangeSet
	c.Retain(from).Delete(to - from)
	return c
}

// Replacement returns a change set replacing [from, to) with text.
func Replacement(from, to int, text string) ChangeSet {
	var c ChangeSet
	c.Retain(from).Delete(to - from).Insert(text)
	return c
}

// apply returns the edited text.
func (c ChangeSet) apply(text []rune) ([]rune, error) {
	out := make([]rune, 0, len(text))
	pos := 0
	for _, op := range c.ops {
		switch op.Kind {
		case OpRetain:
			if pos+op.N > len(text) {
				return nil, ErrInvalidChange
			}
			out = append(out, text[pos:pos+op.N]...)
			pos += op.N
		case OpDelete:
			if pos+op.N > len(text) {
				return nil, ErrInvalidChange
			}
			pos += op.N
		case OpInsert:
			out = append(out, []rune(op.Text)...)
		}
	}
	return append(out, text[pos:]...), nil
}

// Edited returns the range of the new text touched by the change.
func (c ChangeSet) Edited() types.Range {
	start, end, pos := -1, 0, 0
	for _, op := range c.ops {
		switch op.Kind {
		case OpRetain:
			pos += op.N
		case OpDelete:
			if start < 0 {
				start = pos
			}
			end = pos
		case OpInsert:
			if start < 0 {
				start = pos
			}
			pos += len([]rune(op.Text))
			end = pos
		}
	}
	if start < 0 {
		return types.Range{}
	}
	return types.Range{Anchor: start, Head: end}
}

// mapOffset moves an offset in the old text to the matching offset in the
// new text.
func (c ChangeSet) mapOffset(offset int) int {
	oldPos, newPos := 0, 0
	for _, op := range c.ops {
		if oldPos > offset {
			break
		}
		switch op.Kind {
		case OpRetain:
			if offset < oldPos+op.N {
				return newPos + offset - oldPos
			}
			oldPos += op.N
			newPos += op.N
		case OpDelete:
			if offset < oldPos+op.N {
				return newPos
			}
			oldPos += op.N
		case OpInsert:
			newPos += len([]rune(op.Text))
		}
	}
	return newPos + offset - oldPos
}
