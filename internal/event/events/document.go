package events

import (
	"slices"

	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
	"github.com/dshills/keybridge/internal/types"
)

// Document event topics.
const (
	TopicDocumentChanged            topic.Topic = "document.changed"
	TopicDocumentOpened             topic.Topic = "document.opened"
	TopicDocumentClosed             topic.Topic = "document.closed"
	TopicDocumentSaved              topic.Topic = "document.saved"
	TopicDocumentSaveFailed         topic.Topic = "document.save_failed"
	TopicDocumentLanguageDetected   topic.Topic = "document.language_detected"
	TopicDocumentDiagnosticsUpdated topic.Topic = "document.diagnostics_updated"
)

// DocumentChanged is published after an edit is applied to a document.
type DocumentChanged struct {
	documentEvent

	Doc      types.DocumentID
	Revision uint64
	Change   types.ChangeType

	// Edited covers the characters touched by the edit in the new text.
	Edited types.Range

	// Modified reports unsaved changes after the edit.
	Modified bool
}

func (DocumentChanged) Topic() topic.Topic { return TopicDocumentChanged }
func (DocumentChanged) Coalescible() bool  { return true }
func (e DocumentChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentChanged, e.Doc.String())
}

// DocumentOpened is published when a document is loaded into the core.
type DocumentOpened struct {
	documentEvent

	Doc      types.DocumentID
	Path     string
	Language string
}

func (DocumentOpened) Topic() topic.Topic { return TopicDocumentOpened }
func (DocumentOpened) Coalescible() bool  { return false }
func (e DocumentOpened) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentOpened, e.Doc.String())
}

// DocumentClosed is published when a document is removed from the core.
type DocumentClosed struct {
	documentEvent

	Doc         types.DocumentID
	WasModified bool
}

func (DocumentClosed) Topic() topic.Topic { return TopicDocumentClosed }
func (DocumentClosed) Coalescible() bool  { return false }
func (e DocumentClosed) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentClosed, e.Doc.String())
}

// DocumentSaved is published after a successful write to disk.
type DocumentSaved struct {
	documentEvent

	Doc      types.DocumentID
	Path     string
	Revision uint64
}

func (DocumentSaved) Topic() topic.Topic { return TopicDocumentSaved }
func (DocumentSaved) Coalescible() bool  { return false }
func (e DocumentSaved) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentSaved, e.Doc.String())
}

// DocumentSaveFailed is published when a write to disk fails.
type DocumentSaveFailed struct {
	documentEvent

	Doc    types.DocumentID
	Path   string
	Reason string
}

func (DocumentSaveFailed) Topic() topic.Topic { return TopicDocumentSaveFailed }
func (DocumentSaveFailed) Coalescible() bool  { return false }
func (e DocumentSaveFailed) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentSaveFailed, e.Doc.String())
}

// LanguageDetected is published when the core assigns a language to a document.
type LanguageDetected struct {
	documentEvent

	Doc      types.DocumentID
	Language string
}

func (LanguageDetected) Topic() topic.Topic { return TopicDocumentLanguageDetected }
func (LanguageDetected) Coalescible() bool  { return true }
func (e LanguageDetected) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentLanguageDetected, e.Doc.String())
}

// DiagnosticCounts tallies diagnostics by severity.
type DiagnosticCounts struct {
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Total returns the sum of all counts.
func (c DiagnosticCounts) Total() int {
	return c.Errors + c.Warnings + c.Infos + c.Hints
}

// CountDiagnostics tallies diags by severity.
func CountDiagnostics(diags []types.Diagnostic) DiagnosticCounts {
	var c DiagnosticCounts
	for _, d := range diags {
		switch d.Severity {
		case types.SeverityError:
			c.Errors++
		case types.SeverityWarning:
			c.Warnings++
		case types.SeverityInfo:
			c.Infos++
		default:
			c.Hints++
		}
	}
	return c
}

// DiagnosticsUpdated carries the full diagnostic set of a document.
type DiagnosticsUpdated struct {
	documentEvent

	Doc    types.DocumentID
	Counts DiagnosticCounts

	diagnostics []types.Diagnostic
}

// NewDiagnosticsUpdated copies diags into a new event.
func NewDiagnosticsUpdated(doc types.DocumentID, diags []types.Diagnostic) DiagnosticsUpdated {
	return DiagnosticsUpdated{
		Doc:         doc,
		Counts:      CountDiagnostics(diags),
		diagnostics: slices.Clone(diags),
	}
}

// Diagnostics returns a copy of the diagnostic set.
func (e DiagnosticsUpdated) Diagnostics() []types.Diagnostic {
	return slices.Clone(e.diagnostics)
}

func (DiagnosticsUpdated) Topic() topic.Topic { return TopicDocumentDiagnosticsUpdated }
func (DiagnosticsUpdated) Coalescible() bool  { return true }
func (e DiagnosticsUpdated) CoalesceKey() coalesce.Key {
	return keyOf(TopicDocumentDiagnosticsUpdated, e.Doc.String())
}
