package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/types"
)

// PromptFunc receives the text submitted to a prompt.
type PromptFunc func(e *Editor, text string) error

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRoot sets the workspace root. Defaults to the process working directory.
func WithRoot(dir string) Option {
	return func(e *Editor) {
		e.root = dir
	}
}

// Editor is the reference editing core. Except for Notify, OnNotification,
// Applier and Capabilities, its methods must be called on the loop goroutine.
type Editor struct {
	loop   *Loop
	logger *slog.Logger
	root   string

	docs      map[types.DocumentID]*Document
	docOrder  []types.DocumentID
	views     map[types.ViewID]*View
	viewOrder []types.ViewID
	active    *View

	mode          types.Mode
	theme         string
	width, height int
	fontSize      float64
	highContrast  bool
	reducedMotion bool
	linting       bool
	branch        string
	openPrompt    types.PromptID

	servers  map[types.ServerID]*Server
	commands map[string]*Command
	aliases  map[string]string
	prompts  *capability.Table[PromptFunc]

	hooksMu sync.RWMutex
	hooks   map[Category][]Hook

	nextDoc, nextView, nextServer uint64

	state atomic.Pointer[state]
}

// NewEditor creates an editor bound to loop.
func NewEditor(loop *Loop, opts ...Option) *Editor {
	e := &Editor{
		loop:     loop,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		docs:     make(map[types.DocumentID]*Document),
		views:    make(map[types.ViewID]*View),
		theme:    "default",
		linting:  true,
		servers:  make(map[types.ServerID]*Server),
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
		prompts:  capability.NewTable[PromptFunc](),
		hooks:    make(map[Category][]Hook),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.root == "" {
		if wd, err := os.Getwd(); err == nil {
			e.root = wd
		}
	}
	registerBuiltins(e)
	e.publish()
	return e
}

// Loop returns the loop the editor runs on.
func (e *Editor) Loop() *Loop {
	return e.loop
}

// OnNotification implements HookSource. Hooks run in registration order.
func (e *Editor) OnNotification(c Category, h Hook) {
	e.hooksMu.Lock()
	e.hooks[c] = append(e.hooks[c], h)
	e.hooksMu.Unlock()
}

func (e *Editor) emit(n Notification) {
	e.hooksMu.RLock()
	hooks := e.hooks[n.Category()]
	e.hooksMu.RUnlock()
	for _, h := range hooks {
		h(n)
	}
}

// Notify injects an externally produced notification, such as a file-system
// change. It is safe to call from any goroutine.
func (e *Editor) Notify(n Notification) error {
	return e.loop.Post(func() {
		e.observe(n)
		e.publish()
	})
}

func (e *Editor) observe(n Notification) {
	switch n := n.(type) {
	case FileSystemChanged:
		e.emit(n)
		if n.Op == FileWritten {
			e.reloadPath(n.Path)
		}
	case HeadDidChange:
		e.branch = n.Branch
		e.emit(n)
		e.emitWorkTree()
	default:
		e.emit(n)
	}
}

// Root returns the workspace root.
func (e *Editor) Root() string {
	return e.root
}

// Mode returns the current mode.
func (e *Editor) Mode() types.Mode {
	return e.mode
}

// Theme returns the current theme.
func (e *Editor) Theme() string {
	return e.theme
}

// Active returns the focused view, or nil.
func (e *Editor) Active() *View {
	return e.active
}

// Document returns the document with id.
func (e *Editor) Document(id types.DocumentID) (*Document, bool) {
	d, ok := e.docs[id]
	return d, ok
}

// Documents returns open documents in opening order.
func (e *Editor) Documents() []*Document {
	out := make([]*Document, 0, len(e.docOrder))
	for _, id := range e.docOrder {
		out = append(out, e.docs[id])
	}
	return out
}

// View returns the view with id.
func (e *Editor) View(id types.ViewID) (*View, bool) {
	v, ok := e.views[id]
	return v, ok
}

// Open loads path into a new document shown in the active view. A missing
// file opens as an empty document at that path.
func (e *Editor) Open(path string) (*Document, error) {
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(e.root, path)
	}
	for _, d := range e.Documents() {
		if path != "" && d.Path == path {
			e.show(d)
			return d, nil
		}
	}
	text := ""
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text = string(data)
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
	}
	return e.OpenText(path, text), nil
}

// OpenText creates a document with the given text without touching disk.
func (e *Editor) OpenText(path, text string) *Document {
	e.nextDoc++
	doc := newDocument(types.DocumentID(e.nextDoc), path, text)
	e.docs[doc.ID] = doc
	e.docOrder = append(e.docOrder, doc.ID)

	e.emit(DocumentDidOpen{Doc: doc})
	e.emit(LanguageDidChange{Doc: doc})
	e.show(doc)
	e.refresh(doc)
	e.requestServer(doc)
	e.logger.Debug("document opened", "doc", doc.ID, "path", path, "language", doc.Language)
	return doc
}

func (e *Editor) show(doc *Document) {
	if e.active == nil {
		e.nextView++
		v := newView(types.ViewID(e.nextView), doc)
		e.views[v.ID] = v
		e.viewOrder = append(e.viewOrder, v.ID)
		e.active = v
		e.emit(ViewDidFocus{View: v})
		return
	}
	if e.active.Doc == doc {
		return
	}
	e.active.Doc = doc
	e.active.setCursor(0)
	e.active.scroll = types.Position{}
	e.emit(SelectionDidChange{View: e.active})
}

// CloseDocument removes a document. A modified document is only closed
// when force is set.
func (e *Editor) CloseDocument(id types.DocumentID, force bool) error {
	doc, ok := e.docs[id]
	if !ok {
		return ErrUnknownDocument
	}
	if doc.Modified() && !force {
		return fmt.Errorf("%s has unsaved changes", doc.Name())
	}
	delete(e.docs, id)
	e.docOrder = slices.DeleteFunc(e.docOrder, func(x types.DocumentID) bool { return x == id })

	var fallback *Document
	if n := len(e.docOrder); n > 0 {
		fallback = e.docs[e.docOrder[n-1]]
	}
	for _, v := range e.viewsOf(doc) {
		if fallback != nil {
			v.Doc = fallback
			v.setCursor(0)
			v.scroll = types.Position{}
			e.emit(SelectionDidChange{View: v})
			continue
		}
		e.removeView(v)
	}
	e.emit(DocumentDidClose{Doc: doc})
	return nil
}

func (e *Editor) removeView(v *View) {
	delete(e.views, v.ID)
	e.viewOrder = slices.DeleteFunc(e.viewOrder, func(x types.ViewID) bool { return x == v.ID })
	e.emit(ViewDidClose{View: v})
	if e.active != v {
		return
	}
	e.active = nil
	if len(e.viewOrder) > 0 {
		next := e.views[e.viewOrder[len(e.viewOrder)-1]]
		e.active = next
		e.emit(ViewDidFocus{View: next, Previous: v})
	}
}

func (e *Editor) viewsOf(doc *Document) []*View {
	var out []*View
	for _, id := range e.viewOrder {
		if v := e.views[id]; v.Doc == doc {
			out = append(out, v)
		}
	}
	return out
}

func (e *Editor) focus(id types.ViewID) error {
	v, ok := e.views[id]
	if !ok {
		return ErrUnknownView
	}
	if v == e.active {
		return nil
	}
	prev := e.active
	e.active = v
	e.emit(ViewDidFocus{View: v, Previous: prev})
	return nil
}

func (e *Editor) split(vertical bool) error {
	cur := e.active
	if cur == nil {
		return ErrNoActiveView
	}
	e.nextView++
	v := newView(types.ViewID(e.nextView), cur.Doc)
	v.setSelection(cur.selection, cur.primary)
	v.scroll = cur.scroll
	e.views[v.ID] = v
	e.viewOrder = append(e.viewOrder, v.ID)
	e.emit(ViewDidSplit{View: v, Vertical: vertical})
	return e.focus(v.ID)
}

func (e *Editor) setMode(m types.Mode, byCommand bool) {
	if m == e.mode {
		return
	}
	old := e.mode
	e.mode = m
	if m != types.ModeSelect && e.active != nil && e.active.PrimaryRange().Len() > 0 {
		e.active.collapse()
		e.emit(SelectionDidChange{View: e.active})
	}
	e.emit(ModeDidSwitch{Old: old, New: m, ByCommand: byCommand})
}

func (e *Editor) setStatus(msg string, sev types.Severity) {
	e.emit(StatusDidChange{Message: msg, Severity: sev})
}

// OpenPrompt asks the host for a line of input. fn runs on the loop with the
// submitted text.
func (e *Editor) OpenPrompt(title string, fn PromptFunc) types.PromptID {
	id := types.PromptID(e.prompts.Put(fn))
	e.openPrompt = id
	e.setMode(types.ModeCommand, false)
	e.emit(PromptDidOpen{Prompt: id, Title: title})
	return id
}

func (e *Editor) closePrompt(id types.PromptID) (PromptFunc, bool) {
	fn, ok := e.prompts.Take(string(id))
	if ok && e.openPrompt == id {
		e.openPrompt = ""
		e.setMode(types.ModeNormal, false)
	}
	return fn, ok
}

func (e *Editor) edit(v *View, cs ChangeSet) error {
	doc := v.Doc
	if err := doc.apply(cs); err != nil {
		return err
	}
	views := e.viewsOf(doc)
	for _, other := range views {
		other.mapThrough(cs)
	}
	e.emit(DocumentDidChange{Doc: doc, Changes: cs})
	for _, other := range views {
		e.emit(SelectionDidChange{View: other})
	}
	e.follow(v)
	e.refresh(doc)
	return nil
}

func (e *Editor) moveTo(v *View, offset int, extend bool) {
	prev := v.PrimaryRange()
	if extend {
		v.extendTo(offset)
	} else {
		v.setCursor(offset)
	}
	if v.PrimaryRange() != prev || len(v.selection) > 1 {
		e.emit(SelectionDidChange{View: v})
	}
	e.follow(v)
}

func (e *Editor) follow(v *View) {
	if v.follow(e.viewHeight()) {
		e.emit(ViewDidScroll{View: v})
	}
}

// viewHeight is the text area height; the bottom two rows hold the status
// line and the prompt.
func (e *Editor) viewHeight() int {
	return max(0, e.height-2)
}

func (e *Editor) refresh(doc *Document) {
	if e.linting && doc.setDiagnostics(lint(doc)) {
		e.emit(DiagnosticsDidChange{Doc: doc})
	}
	e.emit(DiffDidChange{Doc: doc, Hunks: lineHunks(doc.base, doc.Text())})
}

func (e *Editor) save(doc *Document, path string) error {
	if path == "" {
		path = doc.Path
	}
	if path == "" {
		return fmt.Errorf("%s has no path", doc.Name())
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.root, path)
	}
	if err := os.WriteFile(path, []byte(doc.Text()), 0o644); err != nil {
		e.emit(DocumentDidSave{Doc: doc, Err: err})
		return err
	}
	if doc.Path != path {
		doc.Path = path
		doc.Language = DetectLanguage(path)
		e.emit(LanguageDidChange{Doc: doc})
	}
	doc.markSaved()
	e.emit(DocumentDidSave{Doc: doc})
	e.refresh(doc)
	e.emitWorkTree()
	return nil
}

func (e *Editor) reloadPath(path string) int {
	n := 0
	for _, doc := range e.Documents() {
		if doc.Path != path {
			continue
		}
		if doc.Modified() {
			e.setStatus(doc.Name()+" changed on disk; keeping local edits", types.SeverityWarning)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			e.logger.Debug("reload failed", "path", path, "err", err)
			continue
		}
		if string(data) == doc.Text() {
			continue
		}
		var cs ChangeSet
		cs.Delete(doc.Len()).Insert(string(data))
		doc.reload(string(data))
		for _, v := range e.viewsOf(doc) {
			v.setCursor(v.Cursor())
		}
		e.emit(DocumentDidChange{Doc: doc, Changes: cs})
		for _, v := range e.viewsOf(doc) {
			e.emit(SelectionDidChange{View: v})
		}
		e.refresh(doc)
		n++
	}
	return n
}

func (e *Editor) emitWorkTree() {
	var files []types.FileStatus
	for _, doc := range e.Documents() {
		if doc.Path == "" || !doc.Modified() {
			continue
		}
		rel, err := filepath.Rel(e.root, doc.Path)
		if err != nil {
			rel = doc.Path
		}
		files = append(files, types.FileStatus{Path: rel, State: types.FileModified})
	}
	e.emit(WorkTreeDidChange{Root: e.root, Files: files})
}
