package frontend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keybridge/internal/types"
)

// keyPress converts a tcell key event. It reports false for keys the core
// has no use for.
func keyPress(ev *tcell.EventKey) (types.KeyPress, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	switch k {
	case tcell.KeyRune:
		return types.KeyPress{Key: types.KeyRune, Rune: ev.Rune(), Mods: mods}, true
	case tcell.KeyEnter:
		return types.KeyPress{Key: types.KeyEnter, Mods: mods}, true
	case tcell.KeyTab:
		return types.KeyPress{Key: types.KeyTab, Mods: mods}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return types.KeyPress{Key: types.KeyBackspace, Mods: mods}, true
	case tcell.KeyEscape:
		return types.KeyPress{Key: types.KeyEscape, Mods: mods}, true
	case tcell.KeyDelete:
		return types.KeyPress{Key: types.KeyDelete, Mods: mods}, true
	case tcell.KeyUp:
		return types.KeyPress{Key: types.KeyUp, Mods: mods}, true
	case tcell.KeyDown:
		return types.KeyPress{Key: types.KeyDown, Mods: mods}, true
	case tcell.KeyLeft:
		return types.KeyPress{Key: types.KeyLeft, Mods: mods}, true
	case tcell.KeyRight:
		return types.KeyPress{Key: types.KeyRight, Mods: mods}, true
	case tcell.KeyHome:
		return types.KeyPress{Key: types.KeyHome, Mods: mods}, true
	case tcell.KeyEnd:
		return types.KeyPress{Key: types.KeyEnd, Mods: mods}, true
	case tcell.KeyPgUp:
		return types.KeyPress{Key: types.KeyPageUp, Mods: mods}, true
	case tcell.KeyPgDn:
		return types.KeyPress{Key: types.KeyPageDown, Mods: mods}, true
	}

	// Tab, Enter and Backspace share codes with Ctrl-I, Ctrl-M and Ctrl-H
	// and were handled above.
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return types.KeyPress{Key: types.KeyRune, Rune: 'a' + rune(k-tcell.KeyCtrlA), Mods: mods | types.ModCtrl}, true
	}
	return types.KeyPress{}, false
}

// convertMod converts a tcell modifier mask. Meta folds into Alt.
func convertMod(m tcell.ModMask) types.Modifiers {
	var result types.Modifiers
	if m&tcell.ModShift != 0 {
		result |= types.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= types.ModCtrl
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		result |= types.ModAlt
	}
	return result
}

// wheelLines is how far one wheel notch scrolls.
const wheelLines = 3

// wheel returns the scroll distance for a wheel button mask.
func wheel(b tcell.ButtonMask) int {
	switch {
	case b&tcell.WheelUp != 0:
		return -wheelLines
	case b&tcell.WheelDown != 0:
		return wheelLines
	default:
		return 0
	}
}
