package script

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/types"
)

func newEngine(t *testing.T, opts ...Option) (*Engine, *core.Editor) {
	t.Helper()
	ed := core.NewEditor(core.NewLoop(nil), core.WithRoot(t.TempDir()))
	eng := New(ed, opts...)
	t.Cleanup(eng.Close)
	return eng, ed
}

func statuses(ed *core.Editor) *[]core.StatusDidChange {
	var got []core.StatusDidChange
	ed.OnNotification(core.CategoryEditor, func(n core.Notification) {
		if s, ok := n.(core.StatusDidChange); ok {
			got = append(got, s)
		}
	})
	return &got
}

func TestEngine_RegistersCommand(t *testing.T) {
	eng, ed := newEngine(t)
	require.NoError(t, eng.LoadString("init", `
keybridge.command("greet", "insert a greeting", function(args)
	keybridge.insert("hello " .. (args[1] or "world"))
end)
`))
	assert.Equal(t, []string{"greet"}, eng.Commands())
	assert.True(t, ed.HasCommand("greet"))

	doc := ed.OpenText("", "")
	require.NoError(t, ed.Exec("greet", []string{"there"}))
	assert.Equal(t, "hello there", doc.Text())
}

func TestEngine_ReloadReplacesOwnCommand(t *testing.T) {
	eng, ed := newEngine(t)
	require.NoError(t, eng.LoadString("a", `keybridge.command("hi", function() keybridge.insert("a") end)`))
	require.NoError(t, eng.LoadString("b", `keybridge.command("hi", function() keybridge.insert("b") end)`))
	assert.Equal(t, []string{"hi"}, eng.Commands())

	doc := ed.OpenText("", "")
	require.NoError(t, ed.Exec("hi", nil))
	assert.Equal(t, "b", doc.Text())
}

func TestEngine_RejectsBuiltinOverride(t *testing.T) {
	eng, _ := newEngine(t)
	err := eng.LoadString("init", `keybridge.command("write", function() end)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Empty(t, eng.Commands())
}

func TestEngine_StatusAndQueries(t *testing.T) {
	eng, ed := newEngine(t)
	got := statuses(ed)

	require.NoError(t, eng.LoadString("init", `keybridge.status(keybridge.mode() .. " " .. tostring(keybridge.path()), "warning")`))
	require.NotEmpty(t, *got)
	last := (*got)[len(*got)-1]
	assert.Equal(t, "NOR nil", last.Message)
	assert.Equal(t, types.SeverityWarning, last.Severity)

	ed.OpenText(filepath.Join(ed.Root(), "a.txt"), "abc")
	require.NoError(t, eng.LoadString("query", `keybridge.status(keybridge.text() .. "|" .. keybridge.path())`))
	last = (*got)[len(*got)-1]
	assert.Equal(t, "abc|"+filepath.Join(ed.Root(), "a.txt"), last.Message)

	assert.Error(t, eng.LoadString("bad", `keybridge.status("x", "loud")`))
}

func TestEngine_Exec(t *testing.T) {
	eng, ed := newEngine(t)
	require.NoError(t, eng.LoadString("init", `keybridge.exec("new")`))
	assert.Len(t, ed.Documents(), 1)

	err := eng.LoadString("init", `keybridge.exec("nope")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestEngine_CommandErrorReachesCore(t *testing.T) {
	eng, ed := newEngine(t)
	require.NoError(t, eng.LoadString("init", `keybridge.command("boom", function() error("kaboom") end)`))

	err := ed.Exec("boom", nil)
	require.Error(t, err)
	var cerr *core.CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "boom", cerr.Command)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestEngine_InsertWithoutView(t *testing.T) {
	eng, _ := newEngine(t)
	err := eng.LoadString("init", `keybridge.insert("x")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active view")
}

func TestEngine_Sandbox(t *testing.T) {
	eng, ed := newEngine(t)
	got := statuses(ed)

	require.NoError(t, eng.LoadString("probe", `
keybridge.status(tostring(io == nil and os == nil and dofile == nil and load == nil and require == nil))
`))
	require.NotEmpty(t, *got)
	assert.Equal(t, "true", (*got)[len(*got)-1].Message)

	assert.Error(t, eng.LoadString("escape", `os.execute("true")`))
	require.NoError(t, eng.LoadString("libs", `keybridge.status(string.upper("ok") .. math.floor(2.5) .. table.concat({"a", "b"}))`))
	assert.Equal(t, "OK2ab", (*got)[len(*got)-1].Message)
}

func TestEngine_Timeout(t *testing.T) {
	eng, ed := newEngine(t, WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := eng.LoadString("spin", `while true do end`)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.NoError(t, eng.LoadString("init", `keybridge.command("spin", function() while true do end end)`))
	assert.ErrorIs(t, ed.Exec("spin", nil), ErrTimeout)
}

func TestEngine_LoadFile(t *testing.T) {
	eng, ed := newEngine(t)

	err := eng.LoadFile(filepath.Join(ed.Root(), "missing.lua"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	path := filepath.Join(ed.Root(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte(`keybridge.command("root", function() keybridge.insert(keybridge.root()) end)`), 0o644))
	require.NoError(t, eng.LoadFile(path))

	doc := ed.OpenText("", "")
	require.NoError(t, ed.Exec("root", nil))
	assert.Equal(t, ed.Root(), doc.Text())
}

func TestEngine_Closed(t *testing.T) {
	eng, ed := newEngine(t)
	require.NoError(t, eng.LoadString("init", `keybridge.command("hi", function() end)`))
	eng.Close()
	eng.Close()

	assert.ErrorIs(t, eng.LoadString("again", `x = 1`), ErrClosed)
	assert.ErrorIs(t, ed.Exec("hi", nil), ErrClosed)
}
