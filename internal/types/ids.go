package types

import "strconv"

// DocumentID identifies an open document.
type DocumentID uint64

// String returns a stable printable form such as "doc-7".
func (id DocumentID) String() string {
	return "doc-" + strconv.FormatUint(uint64(id), 10)
}

// ViewID identifies a view onto a document.
type ViewID uint64

// String returns a stable printable form such as "view-1".
func (id ViewID) String() string {
	return "view-" + strconv.FormatUint(uint64(id), 10)
}

// ServerID identifies a language server session.
type ServerID uint64

// String returns a stable printable form such as "lsp-2".
func (id ServerID) String() string {
	return "lsp-" + strconv.FormatUint(uint64(id), 10)
}

// Correlation links an operation submitted to the core with the events that
// report its outcome.
type Correlation string

// PromptID names a behavior-carrying UI component held in a side table.
type PromptID string
