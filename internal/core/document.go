package core

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/keybridge/internal/types"
)

// Document is an open text buffer. It is owned by the loop goroutine.
type Document struct {
	ID       types.DocumentID
	Path     string
	Language string

	text        []rune
	base        string
	revision    uint64
	modified    bool
	diagnostics []types.Diagnostic
}

func newDocument(id types.DocumentID, path, text string) *Document {
	return &Document{
		ID:       id,
		Path:     path,
		Language: DetectLanguage(path),
		text:     []rune(text),
		base:     text,
	}
}

// Text returns the current text.
func (d *Document) Text() string {
	return string(d.text)
}

// Len returns the length in characters.
func (d *Document) Len() int {
	return len(d.text)
}

// Revision increases with every applied change.
func (d *Document) Revision() uint64 {
	return d.revision
}

// Modified reports whether the text differs from the last load or save.
func (d *Document) Modified() bool {
	return d.modified
}

// Diagnostics returns the live diagnostic slice. Callers must not retain it
// past the current loop task.
func (d *Document) Diagnostics() []types.Diagnostic {
	return d.diagnostics
}

// Name returns the base name of the path, or "[scratch]".
func (d *Document) Name() string {
	if d.Path == "" {
		return "[scratch]"
	}
	return filepath.Base(d.Path)
}

// Snapshot returns an immutable copy of the document state.
func (d *Document) Snapshot() types.Snapshot {
	return types.Snapshot{
		Doc:      d.ID,
		Revision: d.revision,
		Path:     d.Path,
		Language: d.Language,
		Text:     string(d.text),
		Modified: d.modified,
	}
}

// PositionOf converts a character offset to a line/column position.
func (d *Document) PositionOf(offset int) types.Position {
	offset = clamp(offset, 0, len(d.text))
	var p types.Position
	for _, r := range d.text[:offset] {
		if r == '\n' {
			p.Line++
			p.Column = 0
		} else {
			p.Column++
		}
	}
	return p
}

// OffsetOf converts a position to a character offset, clamping the column
// to the line length.
func (d *Document) OffsetOf(p types.Position) int {
	line, off := 0, 0
	for off < len(d.text) && line < p.Line {
		if d.text[off] == '\n' {
			line++
		}
		off++
	}
	end := off
	for end < len(d.text) && d.text[end] != '\n' {
		end++
	}
	return off + clamp(p.Column, 0, end-off)
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return strings.Count(string(d.text), "\n") + 1
}

func (d *Document) apply(cs ChangeSet) error {
	text, err := cs.apply(d.text)
	if err != nil {
		return err
	}
	d.text = text
	d.revision++
	d.modified = string(text) != d.base
	return nil
}

func (d *Document) reload(text string) {
	d.text = []rune(text)
	d.base = text
	d.revision++
	d.modified = false
}

func (d *Document) markSaved() {
	d.base = string(d.text)
	d.modified = false
}

func (d *Document) setDiagnostics(diags []types.Diagnostic) bool {
	if slices.Equal(d.diagnostics, diags) {
		return false
	}
	d.diagnostics = diags
	return true
}

var languages = map[string]string{
	".go":   "go",
	".rs":   "rust",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".md":   "markdown",
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
	".c":    "c",
	".h":    "c",
	".sh":   "bash",
}

// DetectLanguage maps a path's extension to a language name, or "text".
func DetectLanguage(path string) string {
	if lang, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "text"
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
