package core

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/types"
)

// state is the immutable view of the editor published after every loop task.
type state struct {
	docs     []types.Snapshot
	index    map[types.DocumentID]int
	scroll   map[types.ViewID]types.Position
	active   types.ViewID
	commands []string
	aliases  map[string]string
}

func (e *Editor) publish() {
	s := &state{
		docs:     make([]types.Snapshot, 0, len(e.docOrder)),
		index:    make(map[types.DocumentID]int, len(e.docOrder)),
		scroll:   make(map[types.ViewID]types.Position, len(e.views)),
		commands: e.CommandNames(),
		aliases:  make(map[string]string, len(e.aliases)),
	}
	prev := e.state.Load()
	for i, id := range e.docOrder {
		d := e.docs[id]
		snap, reused := types.Snapshot{}, false
		if prev != nil {
			if j, ok := prev.index[id]; ok && prev.docs[j].Revision == d.revision && prev.docs[j].Path == d.Path && prev.docs[j].Modified == d.modified {
				snap, reused = prev.docs[j], true
			}
		}
		if !reused {
			snap = d.Snapshot()
		}
		s.docs = append(s.docs, snap)
		s.index[id] = i
	}
	for id, v := range e.views {
		s.scroll[id] = v.scroll
	}
	if e.active != nil {
		s.active = e.active.ID
	}
	for a, n := range e.aliases {
		s.aliases[a] = n
	}
	e.state.Store(s)
}

// Capabilities implements the core-side capability traits. Reads are served
// from the last published state and never block; writes are scheduled on the
// loop and report their outcome through notifications.
type Capabilities struct {
	e *Editor
}

var (
	_ capability.DocumentAccess  = Capabilities{}
	_ capability.ViewManagement  = Capabilities{}
	_ capability.CommandExecutor = Capabilities{}
	_ capability.ScrollManager   = Capabilities{}
)

// Capabilities returns the editor's capability implementations.
func (e *Editor) Capabilities() Capabilities {
	return Capabilities{e: e}
}

// ProvideCapabilities registers every core trait in r.
func (e *Editor) ProvideCapabilities(r *capability.Registry) error {
	c := e.Capabilities()
	if err := capability.Provide[capability.DocumentAccess](r, c); err != nil {
		return err
	}
	if err := capability.Provide[capability.ViewManagement](r, c); err != nil {
		return err
	}
	if err := capability.Provide[capability.CommandExecutor](r, c); err != nil {
		return err
	}
	return capability.Provide[capability.ScrollManager](r, c)
}

func (c Capabilities) load() *state {
	return c.e.state.Load()
}

// TextFor implements capability.DocumentAccess.
func (c Capabilities) TextFor(doc types.DocumentID) (types.Snapshot, bool) {
	s := c.load()
	i, ok := s.index[doc]
	if !ok {
		return types.Snapshot{}, false
	}
	return s.docs[i], true
}

// Documents implements capability.DocumentAccess.
func (c Capabilities) Documents() []types.DocumentID {
	s := c.load()
	ids := make([]types.DocumentID, len(s.docs))
	for i, d := range s.docs {
		ids[i] = d.Doc
	}
	return ids
}

// ActiveView implements capability.ViewManagement.
func (c Capabilities) ActiveView() (types.ViewID, bool) {
	s := c.load()
	return s.active, s.active != 0
}

// SetActive implements capability.ViewManagement.
func (c Capabilities) SetActive(view types.ViewID) error {
	if _, ok := c.load().scroll[view]; !ok {
		return ErrUnknownView
	}
	return c.post(FocusView{Op: newOp(), View: view})
}

// HasCommand implements capability.CommandExecutor.
func (c Capabilities) HasCommand(name string) bool {
	s := c.load()
	if n, ok := s.aliases[name]; ok {
		name = n
	}
	_, found := slices.BinarySearch(s.commands, name)
	return found
}

// Commands implements capability.CommandExecutor.
func (c Capabilities) Commands() []string {
	return slices.Clone(c.load().commands)
}

// Execute implements capability.CommandExecutor.
func (c Capabilities) Execute(name string, args ...string) (types.Correlation, error) {
	if !c.HasCommand(name) {
		return "", ErrUnknownCommand
	}
	op := Run{Op: newOp(), Command: name, Args: slices.Clone(args), Source: types.SourcePalette}
	if err := c.post(op); err != nil {
		return "", err
	}
	return op.ID, nil
}

// ScrollOffset implements capability.ScrollManager.
func (c Capabilities) ScrollOffset(view types.ViewID) (types.Position, bool) {
	p, ok := c.load().scroll[view]
	return p, ok
}

// ScrollLines implements capability.ScrollManager.
func (c Capabilities) ScrollLines(view types.ViewID, n int) error {
	if _, ok := c.load().scroll[view]; !ok {
		return ErrUnknownView
	}
	return c.post(Scroll{Op: newOp(), View: view, Lines: n})
}

func (c Capabilities) post(op Operation) error {
	return c.e.loop.Post(func() {
		_ = c.e.Apply(context.Background(), op)
	})
}

// NewCorrelation returns a fresh operation correlation id.
func NewCorrelation() types.Correlation {
	return types.Correlation(uuid.NewString())
}

func newOp() Op {
	return Op{ID: NewCorrelation()}
}
