package core

import (
	"math"

	"github.com/dshills/keybridge/internal/types"
)

func (e *Editor) press(k types.KeyPress) error {
	if e.mode == types.ModeCommand {
		if k.Key == types.KeyEscape && e.openPrompt != "" {
			e.closePrompt(e.openPrompt)
		}
		return nil
	}
	if k.Key == types.KeyRune && k.Rune == ':' && k.Mods == 0 && e.mode != types.ModeInsert {
		e.commandPrompt()
		return nil
	}
	v := e.active
	if v == nil {
		return ErrNoActiveView
	}
	switch e.mode {
	case types.ModeInsert:
		return e.pressInsert(v, k)
	case types.ModeSelect:
		return e.pressSelect(v, k)
	default:
		return e.pressNormal(v, k)
	}
}

func (e *Editor) commandPrompt() {
	e.OpenPrompt(":", func(e *Editor, line string) error {
		name, args := splitCommandLine(line)
		if name == "" {
			return nil
		}
		return e.run(name, args)
	})
}

func (e *Editor) pressNormal(v *View, k types.KeyPress) error {
	if k.Mods.Has(types.ModCtrl) {
		switch k.Rune {
		case 's':
			return e.run("write", nil)
		case 'p':
			return e.run("file_picker", nil)
		case 'b':
			return e.run("buffer_picker", nil)
		case 'q':
			return e.run("quit", nil)
		case 'w':
			return e.run("vsplit", nil)
		}
		return nil
	}
	if off, ok := e.motion(v, k, true); ok {
		e.moveTo(v, off, false)
		return nil
	}
	if k.Key != types.KeyRune {
		return nil
	}
	switch k.Rune {
	case 'i':
		e.setMode(types.ModeInsert, false)
	case 'a':
		e.moveTo(v, v.Cursor()+1, false)
		e.setMode(types.ModeInsert, false)
	case 'o':
		end := e.lineEnd(v)
		if err := e.edit(v, Insertion(end, "\n")); err != nil {
			return err
		}
		e.moveTo(v, end+1, false)
		e.setMode(types.ModeInsert, false)
	case 'x':
		if c := v.Cursor(); c < v.Doc.Len() {
			return e.edit(v, Deletion(c, c+1))
		}
	case 'v':
		e.setMode(types.ModeSelect, false)
	case 'D':
		return e.run("diagnostics_picker", nil)
	}
	return nil
}

func (e *Editor) pressInsert(v *View, k types.KeyPress) error {
	c := v.Cursor()
	switch k.Key {
	case types.KeyEscape:
		e.setMode(types.ModeNormal, false)
		return nil
	case types.KeyEnter:
		return e.edit(v, Insertion(c, "\n"))
	case types.KeyTab:
		return e.edit(v, Insertion(c, "\t"))
	case types.KeyBackspace:
		if c == 0 {
			return nil
		}
		return e.edit(v, Deletion(c-1, c))
	case types.KeyDelete:
		if c >= v.Doc.Len() {
			return nil
		}
		return e.edit(v, Deletion(c, c+1))
	case types.KeyRune:
		if k.Mods.Has(types.ModCtrl) || k.Mods.Has(types.ModAlt) {
			return nil
		}
		if err := e.edit(v, Insertion(c, string(k.Rune))); err != nil {
			return err
		}
		e.emit(PostInsertChar{View: v, Char: k.Rune})
		return nil
	}
	if off, ok := e.motion(v, k, false); ok {
		e.moveTo(v, off, false)
	}
	return nil
}

func (e *Editor) pressSelect(v *View, k types.KeyPress) error {
	if k.Key == types.KeyEscape {
		e.setMode(types.ModeNormal, false)
		return nil
	}
	if off, ok := e.motion(v, k, true); ok {
		e.moveTo(v, off, true)
		return nil
	}
	if k.Key == types.KeyRune && (k.Rune == 'd' || k.Rune == 'x') {
		r := v.PrimaryRange()
		e.setMode(types.ModeNormal, false)
		if r.Len() == 0 {
			return nil
		}
		return e.edit(v, Deletion(r.Start(), r.End()))
	}
	return nil
}

// motion resolves a cursor movement key. Letter motions are only honored
// when letters is set.
func (e *Editor) motion(v *View, k types.KeyPress, letters bool) (int, bool) {
	doc := v.Doc
	c := v.Cursor()
	pos := doc.PositionOf(c)
	page := max(1, e.viewHeight())

	key := k.Key
	if key == types.KeyRune && letters && k.Mods == 0 {
		switch k.Rune {
		case 'h':
			key = types.KeyLeft
		case 'l':
			key = types.KeyRight
		case 'j':
			key = types.KeyDown
		case 'k':
			key = types.KeyUp
		case '0':
			key = types.KeyHome
		case '$':
			key = types.KeyEnd
		}
	}

	switch key {
	case types.KeyLeft:
		return max(0, c-1), true
	case types.KeyRight:
		return min(doc.Len(), c+1), true
	case types.KeyUp:
		return doc.OffsetOf(types.Position{Line: max(0, pos.Line-1), Column: pos.Column}), true
	case types.KeyDown:
		return doc.OffsetOf(types.Position{Line: min(doc.LineCount()-1, pos.Line+1), Column: pos.Column}), true
	case types.KeyHome:
		return doc.OffsetOf(types.Position{Line: pos.Line}), true
	case types.KeyEnd:
		return e.lineEnd(v), true
	case types.KeyPageUp:
		return doc.OffsetOf(types.Position{Line: max(0, pos.Line-page), Column: pos.Column}), true
	case types.KeyPageDown:
		return doc.OffsetOf(types.Position{Line: min(doc.LineCount()-1, pos.Line+page), Column: pos.Column}), true
	}
	return 0, false
}

func (e *Editor) lineEnd(v *View) int {
	pos := v.Doc.PositionOf(v.Cursor())
	return v.Doc.OffsetOf(types.Position{Line: pos.Line, Column: math.MaxInt})
}
