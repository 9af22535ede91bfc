package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/types"
)

type notes struct {
	got []Notification
}

func (n *notes) hook(note Notification) { n.got = append(n.got, note) }

func ofType[T Notification](n *notes) []T {
	var out []T
	for _, x := range n.got {
		if v, ok := x.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func newTestEditor(t *testing.T) (*Editor, *notes) {
	t.Helper()
	e := NewEditor(NewLoop(nil), WithRoot(t.TempDir()))
	rec := &notes{}
	for _, c := range Categories {
		e.OnNotification(c, rec.hook)
	}
	return e, rec
}

func apply(t *testing.T, e *Editor, ops ...Operation) {
	t.Helper()
	for _, op := range ops {
		require.NoError(t, e.Apply(context.Background(), op))
	}
}

func press(keys ...types.KeyPress) []Operation {
	ops := make([]Operation, len(keys))
	for i, k := range keys {
		ops[i] = Press{Op: newOp(), Key: k}
	}
	return ops
}

func chars(s string) []types.KeyPress {
	var keys []types.KeyPress
	for _, r := range s {
		keys = append(keys, types.Char(r))
	}
	return keys
}

func TestChangeSet(t *testing.T) {
	text := []rune("hello world")

	out, err := Insertion(5, ",").apply(text)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(out))

	out, err = Replacement(6, 11, "there").apply(text)
	require.NoError(t, err)
	assert.Equal(t, "hello there", string(out))
	assert.Equal(t, types.Range{Anchor: 6, Head: 11}, Replacement(6, 11, "there").Edited())

	_, err = Deletion(8, 20).apply(text)
	assert.ErrorIs(t, err, ErrInvalidChange)

	cs := Insertion(2, "xx")
	assert.Equal(t, 1, cs.mapOffset(1))
	assert.Equal(t, 4, cs.mapOffset(2))
	assert.Equal(t, 7, cs.mapOffset(5))

	del := Deletion(2, 5)
	assert.Equal(t, 2, del.mapOffset(3))
	assert.Equal(t, 3, del.mapOffset(6))
	assert.True(t, ChangeSet{}.IsEmpty())
}

func TestDocument_Positions(t *testing.T) {
	d := newDocument(1, "a.go", "ab\ncde\n")
	assert.Equal(t, "go", d.Language)
	assert.Equal(t, 3, d.LineCount())
	assert.Equal(t, types.Position{Line: 1, Column: 2}, d.PositionOf(5))
	assert.Equal(t, 5, d.OffsetOf(types.Position{Line: 1, Column: 2}))
	assert.Equal(t, 2, d.OffsetOf(types.Position{Line: 0, Column: 99}))
	assert.Equal(t, 7, d.OffsetOf(types.Position{Line: 9}))
}

func TestEditor_OpenText(t *testing.T) {
	e, rec := newTestEditor(t)
	doc := e.OpenText("main.go", "package main\n")

	require.NotNil(t, e.Active())
	assert.Same(t, doc, e.Active().Doc)
	assert.Len(t, ofType[DocumentDidOpen](rec), 1)
	assert.Len(t, ofType[LanguageDidChange](rec), 1)
	assert.Len(t, ofType[ViewDidFocus](rec), 1)

	reqs := ofType[ServerStartRequested](rec)
	require.Len(t, reqs, 1)
	assert.Equal(t, "gopls", reqs[0].Name)
}

func TestEditor_InsertMode(t *testing.T) {
	e, rec := newTestEditor(t)
	doc := e.OpenText("", "")

	apply(t, e, press(types.Char('i'))...)
	apply(t, e, press(chars("hi")...)...)
	apply(t, e, press(types.KeyPress{Key: types.KeyBackspace}, types.KeyPress{Key: types.KeyEscape})...)

	assert.Equal(t, "h", doc.Text())
	assert.Equal(t, uint64(3), doc.Revision())
	assert.Equal(t, types.ModeNormal, e.Mode())

	modes := ofType[ModeDidSwitch](rec)
	require.Len(t, modes, 2)
	assert.Equal(t, types.ModeInsert, modes[0].New)
	assert.Equal(t, types.ModeNormal, modes[1].New)

	typed := ofType[PostInsertChar](rec)
	require.Len(t, typed, 2)
	assert.Equal(t, 'i', typed[1].Char)

	changes := ofType[DocumentDidChange](rec)
	require.Len(t, changes, 3)
	assert.Equal(t, []ChangeOp{{Kind: OpRetain, N: 1}, {Kind: OpInsert, Text: "i"}}, changes[1].Changes.Ops())
}

func TestEditor_SelectDelete(t *testing.T) {
	e, _ := newTestEditor(t)
	doc := e.OpenText("", "abcdef")

	apply(t, e, press(types.Char('v'), types.Char('l'), types.Char('l'), types.Char('d'))...)
	assert.Equal(t, "cdef", doc.Text())
	assert.Equal(t, types.ModeNormal, e.Mode())
	assert.Equal(t, 0, e.Active().Cursor())
}

func TestEditor_UnknownCommandFails(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("", "")

	op := Run{Op: newOp(), Command: "nope"}
	err := e.Apply(context.Background(), op)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.ErrorIs(t, err, capability.ErrNotFound)

	fails := ofType[OperationDidFail](rec)
	require.Len(t, fails, 1)
	assert.Equal(t, op.ID, fails[0].Correlation)
	assert.Equal(t, "run", fails[0].Operation)
	assert.Empty(t, ofType[CommandDidRun](rec))
}

func TestEditor_RunCommand(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("", "x")

	op := Run{Op: newOp(), Command: "sp", Source: types.SourceKeyboard}
	apply(t, e, op)

	ran := ofType[CommandDidRun](rec)
	require.Len(t, ran, 1)
	assert.Equal(t, "split", ran[0].Command)
	assert.Equal(t, op.ID, ran[0].Correlation)

	post := ofType[PostCommand](rec)
	require.Len(t, post, 1)
	assert.Equal(t, "split", post[0].Name)

	splits := ofType[ViewDidSplit](rec)
	require.Len(t, splits, 1)
	assert.Same(t, splits[0].View, e.Active())
}

func TestEditor_ScriptHooks(t *testing.T) {
	e, rec := newTestEditor(t)
	assert.ErrorIs(t, e.InsertText("x"), ErrNoActiveView)

	doc := e.OpenText("", "world")
	require.NoError(t, e.InsertText("hello "))
	assert.Equal(t, "hello world", doc.Text())
	assert.Equal(t, 6, e.Active().Cursor())

	e.SetStatus("scripted", types.SeverityWarning)
	status := ofType[StatusDidChange](rec)
	require.NotEmpty(t, status)
	assert.Equal(t, "scripted", status[len(status)-1].Message)

	require.NoError(t, e.Exec("sp", nil))
	assert.Len(t, ofType[ViewDidSplit](rec), 1)
	assert.ErrorIs(t, e.Exec("nope", nil), ErrUnknownCommand)
}

func TestEditor_PromptRoundTrip(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("", "")

	apply(t, e, press(types.Char(':'))...)
	assert.Equal(t, types.ModeCommand, e.Mode())
	prompts := ofType[PromptDidOpen](rec)
	require.Len(t, prompts, 1)

	apply(t, e, SubmitPrompt{Op: newOp(), Prompt: prompts[0].Prompt, Text: "theme dark"})
	assert.Equal(t, "dark", e.Theme())
	assert.Equal(t, types.ModeNormal, e.Mode())
	assert.Equal(t, 0, e.prompts.Len())

	err := e.Apply(context.Background(), SubmitPrompt{Op: newOp(), Prompt: prompts[0].Prompt})
	assert.ErrorIs(t, err, capability.ErrNotFound)
}

func TestEditor_PromptEscape(t *testing.T) {
	e, _ := newTestEditor(t)
	e.OpenText("", "")

	apply(t, e, press(types.Char(':'), types.KeyPress{Key: types.KeyEscape})...)
	assert.Equal(t, types.ModeNormal, e.Mode())
	assert.Zero(t, e.prompts.Len())
}

func TestEditor_SaveAndReload(t *testing.T) {
	e, rec := newTestEditor(t)
	path := filepath.Join(e.Root(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))

	doc, err := e.Open("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\n", doc.Text())

	apply(t, e, press(types.Char('i'), types.Char('>'), types.KeyPress{Key: types.KeyEscape})...)
	assert.True(t, doc.Modified())
	apply(t, e, Run{Op: newOp(), Command: "write"})
	assert.False(t, doc.Modified())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ">one\n", string(data))
	assert.Len(t, ofType[DocumentDidSave](rec), 1)

	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0o644))
	e.observe(FileSystemChanged{Path: path, Op: FileWritten})
	assert.Equal(t, "two\n", doc.Text())
	assert.False(t, doc.Modified())
}

func TestEditor_ReloadKeepsLocalEdits(t *testing.T) {
	e, rec := newTestEditor(t)
	path := filepath.Join(e.Root(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("disk"), 0o644))
	doc, err := e.Open(path)
	require.NoError(t, err)

	apply(t, e, press(types.Char('x'))...)
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))
	apply(t, e, ReloadPath{Op: newOp(), Path: path})

	assert.Equal(t, "isk", doc.Text())
	status := ofType[StatusDidChange](rec)
	require.NotEmpty(t, status)
	assert.Equal(t, types.SeverityWarning, status[len(status)-1].Severity)
}

func TestEditor_FocusLossNotesUnsaved(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("", "abc")
	apply(t, e, press(types.Char('x'))...)

	apply(t, e, SetHostFocus{Op: newOp(), Focused: false})

	assert.Len(t, ofType[HostFocusDidChange](rec), 1)
	status := ofType[StatusDidChange](rec)
	require.Len(t, status, 1)
	assert.Equal(t, "1 unsaved document(s)", status[0].Message)
}

func TestEditor_QuitRefusesModified(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("", "abc")
	apply(t, e, press(types.Char('x'))...)

	assert.Error(t, e.Apply(context.Background(), Run{Op: newOp(), Command: "q"}))
	apply(t, e, Run{Op: newOp(), Command: "q!"})

	quits := ofType[QuitRequested](rec)
	require.Len(t, quits, 1)
	assert.True(t, quits[0].Force)
}

func TestEditor_CloseDocument(t *testing.T) {
	e, rec := newTestEditor(t)
	a := e.OpenText("", "a")
	b := e.OpenText("", "b")
	assert.Same(t, b, e.Active().Doc)

	require.NoError(t, e.CloseDocument(b.ID, false))
	assert.Same(t, a, e.Active().Doc)
	require.NoError(t, e.CloseDocument(a.ID, false))
	assert.Nil(t, e.Active())

	assert.Len(t, ofType[DocumentDidClose](rec), 2)
	assert.Len(t, ofType[ViewDidClose](rec), 1)
	assert.ErrorIs(t, e.CloseDocument(a.ID, false), ErrUnknownDocument)
}

func TestEditor_ResizeFollowsCursor(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("", "1\n2\n3\n4\n5\n6\n7\n8\n9\n")
	apply(t, e, Resize{Op: newOp(), Width: 40, Height: 5})

	apply(t, e, press(chars("jjjjj")...)...)
	assert.Equal(t, 3, e.Active().Scroll().Line)
	assert.NotEmpty(t, ofType[ViewDidScroll](rec))
	assert.Len(t, ofType[AreaDidResize](rec), 1)

	apply(t, e, Resize{Op: newOp(), Width: 40, Height: 5})
	assert.Len(t, ofType[AreaDidResize](rec), 1, "same size is a no-op")
}

func TestEditor_LanguageServer(t *testing.T) {
	e, rec := newTestEditor(t)
	e.OpenText("x.rs", "fn main() {}\n")

	apply(t, e, Run{Op: newOp(), Command: "lsp-start"})
	inits := ofType[ServerDidInitialize](rec)
	require.Len(t, inits, 1)
	assert.Equal(t, "rust-analyzer", inits[0].Server.Name)

	progress := ofType[ProgressDidReport](rec)
	require.Len(t, progress, 3)
	assert.Equal(t, ProgressBegin, progress[0].Phase)
	assert.Equal(t, ProgressEnd, progress[2].Phase)

	apply(t, e, Run{Op: newOp(), Command: "lsp-stop"})
	assert.Len(t, ofType[ServerDidExit](rec), 1)

	assert.Error(t, e.Apply(context.Background(), Run{Op: newOp(), Command: "lsp-start", Args: []string{"cobol"}}))
}

func TestEditor_MemoryPressure(t *testing.T) {
	e, rec := newTestEditor(t)
	bg := e.OpenText("", "TODO\n")
	e.OpenText("", "")
	require.NotEmpty(t, bg.Diagnostics())

	apply(t, e, RelievePressure{Op: newOp(), Level: types.MemoryHigh})
	assert.Empty(t, bg.Diagnostics())

	apply(t, e, RelievePressure{Op: newOp(), Level: types.MemoryCritical})
	assert.False(t, e.linting)
	status := ofType[StatusDidChange](rec)
	require.NotEmpty(t, status)
	assert.Equal(t, types.SeverityError, status[len(status)-1].Severity)
}

func TestEditor_Accessibility(t *testing.T) {
	e, rec := newTestEditor(t)
	apply(t, e, SetAccessibility{Op: newOp(), HighContrast: true})
	assert.Equal(t, "high-contrast", e.Theme())
	apply(t, e, SetAccessibility{Op: newOp(), HighContrast: false})
	assert.Equal(t, "default", e.Theme())
	assert.Len(t, ofType[ThemeDidChange](rec), 2)
}

func TestLint(t *testing.T) {
	d := newDocument(1, "", "ok\nbad \n// TODO fix\n")
	diags := lint(d)
	require.Len(t, diags, 2)
	assert.Equal(t, "trailing-whitespace", diags[0].Code)
	assert.Equal(t, types.Position{Line: 1, Column: 3}, diags[0].Span.Start)
	assert.Equal(t, types.SeverityInfo, diags[1].Severity)
}

func TestLineHunks(t *testing.T) {
	assert.Nil(t, lineHunks("a\nb", "a\nb"))
	assert.Equal(t, []types.Hunk{{Kind: types.HunkAdded, Start: 1, Lines: 1}}, lineHunks("a\nc", "a\nb\nc"))
	assert.Equal(t, []types.Hunk{{Kind: types.HunkRemoved, Start: 1}}, lineHunks("a\nb\nc", "a\nc"))
	assert.Equal(t, []types.Hunk{{Kind: types.HunkChanged, Start: 0, Lines: 1}}, lineHunks("a\nb", "x\nb"))
}

func TestCapabilities(t *testing.T) {
	e, rec := newTestEditor(t)
	doc := e.OpenText("a.txt", "hello")
	e.publish()
	caps := e.Capabilities()

	snap, ok := caps.TextFor(doc.ID)
	require.True(t, ok)
	assert.Equal(t, "hello", snap.Text)
	_, ok = caps.TextFor(99)
	assert.False(t, ok)
	assert.Equal(t, []types.DocumentID{doc.ID}, caps.Documents())

	view, ok := caps.ActiveView()
	require.True(t, ok)
	assert.ErrorIs(t, caps.SetActive(99), capability.ErrNotFound)
	require.NoError(t, caps.SetActive(view))

	assert.True(t, caps.HasCommand("write"))
	assert.True(t, caps.HasCommand("w"))
	assert.False(t, caps.HasCommand("nope"))
	_, err := caps.Execute("nope")
	assert.ErrorIs(t, err, capability.ErrNotFound)

	corr, err := caps.Execute("theme", "solarized")
	require.NoError(t, err)
	assert.NotEmpty(t, corr)
	assert.Equal(t, "default", e.Theme(), "applied on the loop")

	e.Loop().RunPending()
	assert.Equal(t, "solarized", e.Theme())
	ran := ofType[CommandDidRun](rec)
	require.Len(t, ran, 1)
	assert.Equal(t, corr, ran[0].Correlation)

	_, ok = caps.ScrollOffset(view)
	assert.True(t, ok)
	assert.ErrorIs(t, caps.ScrollLines(99, 1), capability.ErrNotFound)

	r := capability.NewRegistry()
	require.NoError(t, e.ProvideCapabilities(r))
	_, ok = capability.Lookup[capability.ScrollManager](r)
	assert.True(t, ok)
}

func TestCapabilities_SnapshotIsStable(t *testing.T) {
	e, _ := newTestEditor(t)
	doc := e.OpenText("", "abc")
	e.publish()
	caps := e.Capabilities()
	before, _ := caps.TextFor(doc.ID)

	apply(t, e, press(types.Char('x'))...)
	after, _ := caps.TextFor(doc.ID)

	assert.Equal(t, "abc", before.Text)
	assert.Equal(t, "bc", after.Text)
}

func TestLoop_OrderAndShutdown(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	var got []int
	finished := make(chan struct{})
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Post(func() { panic("task failure") }))
	require.NoError(t, l.Post(func() { close(finished) }))

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not run tasks")
	}
	require.Len(t, got, 100)
	for i, v := range got {
		require.Equal(t, i, v)
	}

	stopped := make(chan struct{})
	l.Go(ctx, "waiter", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})

	cancel()
	<-done
	<-stopped
	assert.ErrorIs(t, l.Post(func() {}), ErrLoopClosed)
}

func TestLoopApplier(t *testing.T) {
	e, _ := newTestEditor(t)
	e.OpenText("", "")
	a := e.Applier()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Loop().Run(ctx)
		close(done)
	}()

	require.NoError(t, a.Apply(ctx, SetTheme{Op: newOp(), Theme: "one"}))
	require.NoError(t, a.Apply(ctx, SetTheme{Op: newOp(), Theme: "two"}))
	err := a.Apply(ctx, Click{Op: newOp(), View: types.ViewID(999)})
	assert.ErrorIs(t, err, ErrUnknownView)

	cancel()
	<-done
	assert.Equal(t, "two", e.Theme())
	assert.ErrorIs(t, a.Apply(context.Background(), SetTheme{Op: newOp(), Theme: "three"}), ErrLoopClosed)
}

func TestLoop_CallWaitsForTask(t *testing.T) {
	l := NewLoop(nil)

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, l.Call(short, func() {}), context.DeadlineExceeded)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	ran := false
	require.NoError(t, l.Call(ctx, func() { ran = true }))
	assert.True(t, ran)
	require.NoError(t, l.Call(ctx, func() { panic("task failure") }))

	cancel()
	<-done
	assert.ErrorIs(t, l.Call(context.Background(), func() {}), ErrLoopClosed)
}
