package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/keybridge/internal/types"
)

// Command is a named editor command.
type Command struct {
	Name    string
	Aliases []string
	Help    string
	Run     func(e *Editor, args []string) error
}

// RegisterCommand adds or replaces a command.
func (e *Editor) RegisterCommand(c Command) {
	e.commands[c.Name] = &c
	for _, a := range c.Aliases {
		e.aliases[a] = c.Name
	}
}

// HasCommand reports whether name or an alias of it is registered.
func (e *Editor) HasCommand(name string) bool {
	_, ok := e.commands[e.canonical(name)]
	return ok
}

// CommandNames lists registered command names, sorted.
func (e *Editor) CommandNames() []string {
	names := make([]string, 0, len(e.commands))
	for n := range e.commands {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Exec runs a registered command. It must run on the loop.
func (e *Editor) Exec(name string, args []string) error {
	return e.run(name, args)
}

// SetStatus shows msg on the status line. It must run on the loop.
func (e *Editor) SetStatus(msg string, sev types.Severity) {
	e.setStatus(msg, sev)
}

// InsertText inserts text at the cursor of the focused view. It must run on
// the loop.
func (e *Editor) InsertText(text string) error {
	v := e.active
	if v == nil {
		return ErrNoActiveView
	}
	if text == "" {
		return nil
	}
	return e.edit(v, Insertion(v.Cursor(), text))
}

func (e *Editor) canonical(name string) string {
	if c, ok := e.aliases[name]; ok {
		return c
	}
	return name
}

func (e *Editor) run(name string, args []string) error {
	name = e.canonical(name)
	c, ok := e.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if err := c.Run(e, args); err != nil {
		return &CommandError{Command: name, Err: err}
	}
	e.emit(PostCommand{Name: name, View: e.active})
	return nil
}

func splitCommandLine(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

var errNoDocument = errors.New("no document")

func (e *Editor) activeDoc() (*Document, error) {
	if e.active == nil {
		return nil, errNoDocument
	}
	return e.active.Doc, nil
}

func registerBuiltins(e *Editor) {
	for _, c := range builtins {
		e.RegisterCommand(c)
	}
}

var builtins = []Command{
	{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "save the current document, optionally to a new path",
		Run: func(e *Editor, args []string) error {
			doc, err := e.activeDoc()
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return e.save(doc, path)
		},
	},
	{
		Name:    "quit",
		Aliases: []string{"q"},
		Help:    "exit; refuses while documents are modified",
		Run: func(e *Editor, _ []string) error {
			for _, d := range e.Documents() {
				if d.Modified() {
					return fmt.Errorf("%s has unsaved changes (use quit!)", d.Name())
				}
			}
			e.emit(QuitRequested{})
			return nil
		},
	},
	{
		Name:    "quit!",
		Aliases: []string{"q!"},
		Help:    "exit, discarding changes",
		Run: func(e *Editor, _ []string) error {
			e.emit(QuitRequested{Force: true})
			return nil
		},
	},
	{
		Name:    "open",
		Aliases: []string{"o", "e"},
		Help:    "open a file",
		Run: func(e *Editor, args []string) error {
			if len(args) == 0 {
				return errors.New("usage: open <path>")
			}
			_, err := e.Open(args[0])
			return err
		},
	},
	{
		Name: "new",
		Help: "open a scratch document",
		Run: func(e *Editor, _ []string) error {
			e.OpenText("", "")
			return nil
		},
	},
	{
		Name: "close",
		Help: "close the current document",
		Run: func(e *Editor, args []string) error {
			doc, err := e.activeDoc()
			if err != nil {
				return err
			}
			return e.CloseDocument(doc.ID, len(args) > 0 && args[0] == "!")
		},
	},
	{
		Name:    "buffer-next",
		Aliases: []string{"bn"},
		Help:    "show the next open document",
		Run: func(e *Editor, _ []string) error {
			doc, err := e.activeDoc()
			if err != nil {
				return err
			}
			i := slices.Index(e.docOrder, doc.ID)
			e.show(e.docs[e.docOrder[(i+1)%len(e.docOrder)]])
			return nil
		},
	},
	{
		Name:    "split",
		Aliases: []string{"sp"},
		Help:    "split the current view horizontally",
		Run:     func(e *Editor, _ []string) error { return e.split(false) },
	},
	{
		Name:    "vsplit",
		Aliases: []string{"vs"},
		Help:    "split the current view vertically",
		Run:     func(e *Editor, _ []string) error { return e.split(true) },
	},
	{
		Name: "view-close",
		Help: "close the current view",
		Run: func(e *Editor, _ []string) error {
			if e.active == nil {
				return ErrNoActiveView
			}
			if len(e.viewOrder) == 1 {
				return errors.New("cannot close the last view")
			}
			e.removeView(e.active)
			return nil
		},
	},
	{
		Name: "goto",
		Help: "move to a line number",
		Run: func(e *Editor, args []string) error {
			if e.active == nil {
				return ErrNoActiveView
			}
			if len(args) == 0 {
				return errors.New("usage: goto <line>")
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid line %q", args[0])
			}
			v := e.active
			e.moveTo(v, v.Doc.OffsetOf(types.Position{Line: max(0, n-1)}), false)
			return nil
		},
	},
	{
		Name: "theme",
		Help: "switch theme",
		Run: func(e *Editor, args []string) error {
			if len(args) == 0 {
				e.setStatus("theme: "+e.theme, types.SeverityInfo)
				return nil
			}
			return e.setTheme(args[0])
		},
	},
	{
		Name: "cd",
		Help: "change the workspace directory",
		Run: func(e *Editor, args []string) error {
			if len(args) == 0 {
				return errors.New("usage: cd <dir>")
			}
			dir := args[0]
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(e.root, dir)
			}
			info, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			e.root = dir
			e.emit(WorkingDirectoryDidChange{Path: dir})
			return nil
		},
	},
	{
		Name: "diagnose",
		Help: "re-run document checks",
		Run: func(e *Editor, _ []string) error {
			doc, err := e.activeDoc()
			if err != nil {
				return err
			}
			e.linting = true
			e.refresh(doc)
			return nil
		},
	},
	{
		Name: "lsp-start",
		Help: "start the language server for a language",
		Run: func(e *Editor, args []string) error {
			lang := ""
			if len(args) > 0 {
				lang = args[0]
			} else if doc, err := e.activeDoc(); err == nil {
				lang = doc.Language
			}
			return e.startServer(lang)
		},
	},
	{
		Name: "lsp-stop",
		Help: "stop language servers",
		Run: func(e *Editor, args []string) error {
			lang := ""
			if len(args) > 0 {
				lang = args[0]
			}
			e.stopServers(lang)
			return nil
		},
	},
	{Name: "file_picker", Help: "pick a workspace file", Run: func(*Editor, []string) error { return nil }},
	{Name: "buffer_picker", Help: "pick an open document", Run: func(*Editor, []string) error { return nil }},
	{Name: "diagnostics_picker", Help: "pick a diagnostic in the current document", Run: func(*Editor, []string) error { return nil }},
	{Name: "workspace_diagnostics_picker", Help: "pick a diagnostic in any document", Run: func(*Editor, []string) error { return nil }},
}
