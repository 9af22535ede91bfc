package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/types"
)

// DefaultTimeout bounds one call into Lua.
const DefaultTimeout = 2 * time.Second

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("script: engine closed")

	// ErrTimeout is returned when a call runs past the engine timeout.
	ErrTimeout = errors.New("script: timed out")
)

// unsafeGlobals are base library functions that reach the file system or
// compile code at run time.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; print output goes there too.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine owns one Lua state bound to an editor. It is not safe for
// concurrent use: load scripts before the loop starts or from the loop, and
// the commands they register run on the loop.
type Engine struct {
	L       *lua.LState
	editor  *core.Editor
	logger  *slog.Logger
	timeout time.Duration

	names  []string
	closed bool
}

// New creates an engine whose scripts act on ed.
func New(ed *core.Editor, opts ...Option) *Engine {
	e := &Engine{
		editor:  ed,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetTop(0)
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(e.print))
	L.SetGlobal("keybridge", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"command":  e.command,
		"exec":     e.exec,
		"status":   e.status,
		"insert":   e.insert,
		"root":     e.root,
		"mode":     e.mode,
		"path":     e.path,
		"text":     e.text,
		"commands": e.commands,
	}))
	e.L = L
	return e
}

// LoadFile runs the script at path. A missing file is reported with an
// error wrapping fs.ErrNotExist.
func (e *Engine) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return e.do(path, func() error { return e.L.DoFile(path) })
}

// LoadString runs src; name labels it in errors.
func (e *Engine) LoadString(name, src string) error {
	return e.do(name, func() error { return e.L.DoString(src) })
}

// Commands lists the commands scripts registered, sorted.
func (e *Engine) Commands() []string {
	names := slices.Clone(e.names)
	slices.Sort(names)
	return names
}

// Close releases the Lua state. Registered commands fail afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}

func (e *Engine) do(name string, fn func() error) error {
	if e.closed {
		return ErrClosed
	}
	if e.L.Context() != nil {
		// Nested call from a running script; the outer deadline applies.
		return fn()
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	err := fn()
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", name, ErrTimeout)
	default:
		return fmt.Errorf("%s: %w", name, err)
	}
}

func (e *Engine) call(name string, fn *lua.LFunction, args []string) error {
	return e.do(name, func() error {
		t := e.L.NewTable()
		for _, a := range args {
			t.Append(lua.LString(a))
		}
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, t)
	})
}

// keybridge.command(name, [help], fn)
func (e *Engine) command(L *lua.LState) int {
	name := L.CheckString(1)
	help := ""
	fnArg := 2
	if L.Get(2).Type() == lua.LTString {
		help = L.CheckString(2)
		fnArg = 3
	}
	fn := L.CheckFunction(fnArg)
	if strings.ContainsAny(name, " \t\n") || name == "" {
		L.ArgError(1, "command name must be a single word")
		return 0
	}
	own := slices.Contains(e.names, name)
	if e.editor.HasCommand(name) && !own {
		L.RaiseError("command %q is already registered", name)
		return 0
	}
	e.editor.RegisterCommand(core.Command{
		Name: name,
		Help: help,
		Run: func(_ *core.Editor, args []string) error {
			return e.call(name, fn, args)
		},
	})
	if !own {
		e.names = append(e.names, name)
	}
	e.logger.Debug("script command registered", "command", name)
	return 0
}

// keybridge.exec(name, ...)
func (e *Engine) exec(L *lua.LState) int {
	name := L.CheckString(1)
	var args []string
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.CheckString(i))
	}
	if err := e.editor.Exec(name, args); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

var severities = map[string]types.Severity{
	"hint":    types.SeverityHint,
	"info":    types.SeverityInfo,
	"warning": types.SeverityWarning,
	"error":   types.SeverityError,
}

// keybridge.status(message, [severity])
func (e *Engine) status(L *lua.LState) int {
	msg := L.CheckString(1)
	sev, ok := severities[L.OptString(2, "info")]
	if !ok {
		L.ArgError(2, "severity must be hint, info, warning or error")
		return 0
	}
	e.editor.SetStatus(msg, sev)
	return 0
}

// keybridge.insert(text)
func (e *Engine) insert(L *lua.LState) int {
	if err := e.editor.InsertText(L.CheckString(1)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) root(L *lua.LState) int {
	L.Push(lua.LString(e.editor.Root()))
	return 1
}

func (e *Engine) mode(L *lua.LState) int {
	L.Push(lua.LString(e.editor.Mode().String()))
	return 1
}

// keybridge.path() is nil without a focused document or for a scratch one.
func (e *Engine) path(L *lua.LState) int {
	v := e.editor.Active()
	if v == nil || v.Doc.Path == "" {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v.Doc.Path))
	return 1
}

func (e *Engine) text(L *lua.LState) int {
	v := e.editor.Active()
	if v == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v.Doc.Text()))
	return 1
}

func (e *Engine) commands(L *lua.LState) int {
	t := L.NewTable()
	for _, n := range e.editor.CommandNames() {
		t.Append(lua.LString(n))
	}
	L.Push(t)
	return 1
}

func (e *Engine) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.logger.Info(strings.Join(parts, "\t"), "source", "script")
	return 0
}
