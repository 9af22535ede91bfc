package frontend

import (
	"slices"

	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/types"
)

// Model is everything the presentation runtime knows about the core. It is
// built only from domain events and capability reads, and is owned by the
// presentation loop.
type Model struct {
	Width, Height int
	Focused       bool

	Mode   types.Mode
	Theme  string
	Branch string

	Status         string
	StatusSeverity types.Severity

	ActiveView types.ViewID
	Views      map[types.ViewID]*ViewState
	Docs       map[types.DocumentID]*DocState

	// Files are workspace paths learned from file events.
	Files map[string]struct{}

	// Progress holds running language-server work keyed by token.
	Progress map[string]string

	dirty bool
	quit  bool
}

// ViewState mirrors one core view.
type ViewState struct {
	Doc       types.DocumentID
	Cursor    types.Position
	Scroll    types.Position
	Selection []types.Range
}

// DocState mirrors one core document.
type DocState struct {
	Path        string
	Language    string
	Revision    uint64
	Modified    bool
	Diagnostics []types.Diagnostic
	Counts      events.DiagnosticCounts
	Hunks       int
}

func newModel() *Model {
	return &Model{
		Focused:  true,
		Theme:    "default",
		Views:    make(map[types.ViewID]*ViewState),
		Docs:     make(map[types.DocumentID]*DocState),
		Files:    make(map[string]struct{}),
		Progress: make(map[string]string),
		dirty:    true,
	}
}

func (m *Model) view(id types.ViewID) *ViewState {
	v, ok := m.Views[id]
	if !ok {
		v = &ViewState{}
		m.Views[id] = v
	}
	return v
}

func (m *Model) doc(id types.DocumentID) *DocState {
	d, ok := m.Docs[id]
	if !ok {
		d = &DocState{}
		m.Docs[id] = d
	}
	return d
}

// Active returns the focused view, if any.
func (m *Model) Active() (*ViewState, bool) {
	v, ok := m.Views[m.ActiveView]
	return v, ok
}

// SortedFiles returns the known workspace files in lexical order.
func (m *Model) SortedFiles() []string {
	files := make([]string, 0, len(m.Files))
	for f := range m.Files {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Dirty reports whether the model changed since the last frame.
func (m *Model) Dirty() bool {
	return m.dirty
}

func (m *Model) touch() {
	m.dirty = true
}
