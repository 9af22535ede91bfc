package types

// Key identifies a non-character key. Character input uses KeyRune.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every bit in m is set.
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

// KeyPress is one key stroke.
type KeyPress struct {
	Key  Key
	Rune rune
	Mods Modifiers
}

// Char returns a printable character key press.
func Char(r rune) KeyPress {
	return KeyPress{Key: KeyRune, Rune: r}
}

// Ctrl returns a control-modified character key press.
func Ctrl(r rune) KeyPress {
	return KeyPress{Key: KeyRune, Rune: r, Mods: ModCtrl}
}
