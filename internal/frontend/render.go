package frontend

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/types"
)

type palette struct {
	text, tilde, status, selected, popup tcell.Style
	severity                             map[types.Severity]tcell.Style
}

func newPalette(theme string) palette {
	base := tcell.StyleDefault
	p := palette{
		text:     base,
		tilde:    base.Foreground(tcell.ColorNavy),
		status:   base.Reverse(true),
		selected: base.Background(tcell.ColorTeal).Foreground(tcell.ColorBlack),
		popup:    base.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite),
		severity: map[types.Severity]tcell.Style{
			types.SeverityHint:    base.Foreground(tcell.ColorGray),
			types.SeverityInfo:    base,
			types.SeverityWarning: base.Foreground(tcell.ColorYellow),
			types.SeverityError:   base.Foreground(tcell.ColorRed).Bold(true),
		},
	}
	if theme == "high-contrast" {
		p.text = base.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
		p.tilde = p.text.Dim(true)
		p.status = base.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite).Bold(true)
		p.selected = p.status
		p.popup = p.text.Reverse(true)
	}
	return p
}

func (a *App) render() {
	s := a.screen
	s.Clear()
	w, h := s.Size()
	p := newPalette(a.model.Theme)
	rows := textRows(h)

	s.HideCursor()
	if v, ok := a.model.Active(); ok {
		a.drawView(v, w, rows, p)
	}
	if h >= 2 {
		a.drawStatus(w, h-2, p)
	}
	if h >= 1 {
		a.drawBottomLine(w, h-1, p)
	}
	a.drawCompletion(w, rows, p)
	a.drawPicker(w, rows, p)
	s.Show()
}

func (a *App) drawView(v *ViewState, w, rows int, p palette) {
	docs, ok := capability.Lookup[capability.DocumentAccess](a.caps)
	if !ok {
		return
	}
	snap, ok := docs.TextFor(v.Doc)
	if !ok {
		return
	}
	flagged := make(map[int]types.Severity)
	for _, d := range a.model.doc(v.Doc).Diagnostics {
		if sev, ok := flagged[d.Span.Start.Line]; !ok || d.Severity > sev {
			flagged[d.Span.Start.Line] = d.Severity
		}
	}

	lines := strings.Split(snap.Text, "\n")
	for row := range rows {
		n := v.Scroll.Line + row
		if n >= len(lines) {
			a.drawText(0, row, w, "~", p.tilde)
			continue
		}
		style := p.text
		if sev, ok := flagged[n]; ok && sev >= types.SeverityWarning {
			style = style.Underline(true)
		}
		line := []rune(lines[n])
		if v.Scroll.Column < len(line) {
			a.drawText(0, row, w, string(line[v.Scroll.Column:]), style)
		}
	}

	cx, cy := v.Cursor.Column-v.Scroll.Column, v.Cursor.Line-v.Scroll.Line
	if a.prompt == nil && cx >= 0 && cx < w && cy >= 0 && cy < rows {
		if a.model.Mode == types.ModeInsert {
			a.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
		} else {
			a.screen.SetCursorStyle(tcell.CursorStyleSteadyBlock)
		}
		a.screen.ShowCursor(cx, cy)
	}
}

func (a *App) drawStatus(w, y int, p palette) {
	m := a.model
	a.fill(0, y, w, p.status)

	left := fmt.Sprintf(" %s ", m.Mode)
	if v, ok := m.Active(); ok {
		d := m.doc(v.Doc)
		name := "[scratch]"
		if d.Path != "" {
			name = filepath.Base(d.Path)
		}
		left += " " + name
		if d.Modified {
			left += " [+]"
		}
		if c := d.Counts; c.Total() > 0 {
			left += fmt.Sprintf("  E%d W%d", c.Errors, c.Warnings)
		}
		if d.Hunks > 0 {
			left += fmt.Sprintf("  ~%d", d.Hunks)
		}
		left += fmt.Sprintf("  %d:%d", v.Cursor.Line+1, v.Cursor.Column+1)
	}

	var right []string
	tokens := make([]string, 0, len(m.Progress))
	for t := range m.Progress {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)
	for _, t := range tokens {
		right = append(right, m.Progress[t])
	}
	if m.Branch != "" {
		right = append(right, m.Branch)
	}
	r := strings.Join(right, "  ") + " "

	a.drawText(0, y, w, left, p.status)
	if rw := uniseg.StringWidth(r); rw < w-uniseg.StringWidth(left) {
		a.drawText(w-rw, y, rw, r, p.status)
	}
}

func (a *App) drawBottomLine(w, y int, p palette) {
	if pr := a.prompt; pr != nil {
		line := pr.title + string(pr.text)
		a.drawText(0, y, w, line, p.text)
		if x := uniseg.StringWidth(line); x < w {
			a.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
			a.screen.ShowCursor(x, y)
		}
		return
	}
	style, ok := p.severity[a.model.StatusSeverity]
	if !ok {
		style = p.text
	}
	a.drawText(0, y, w, a.model.Status, style)
}

func (a *App) drawCompletion(w, rows int, p palette) {
	items, selected, prefix := a.completion.snapshot()
	v, ok := a.model.Active()
	if len(items) == 0 || !ok {
		return
	}
	y := v.Cursor.Line - v.Scroll.Line + 1
	x := max(v.Cursor.Column-v.Scroll.Column-uniseg.StringWidth(prefix), 0)
	width := 0
	for _, it := range items {
		width = max(width, uniseg.StringWidth(it.Label)+2)
	}
	for i, it := range items {
		if y+i >= rows || x >= w {
			break
		}
		style := p.popup
		if i == selected {
			style = p.selected
		}
		a.fill(x, y+i, min(width, w-x), style)
		a.drawText(x+1, y+i, min(width, w-x)-1, it.Label, style)
	}
}

func (a *App) drawPicker(w, rows int, p palette) {
	pk := a.picker
	if pk == nil || rows < 2 {
		return
	}
	a.fill(0, 0, w, p.status)
	a.drawText(1, 0, w-1, fmt.Sprintf("%s (%d)", pk.kind, len(pk.items)), p.status)

	visible := rows - 1
	first := 0
	if pk.selected >= visible {
		first = pk.selected - visible + 1
	}
	for i := first; i < len(pk.items) && i-first < visible; i++ {
		y := 1 + i - first
		style := p.popup
		if i == pk.selected {
			style = p.selected
		}
		a.fill(0, y, w, style)
		a.drawText(1, y, w-1, pk.items[i].Label, style)
	}
}

func (a *App) fill(x, y, w int, style tcell.Style) {
	for i := range w {
		a.screen.SetContent(x+i, y, ' ', nil, style)
	}
}

// drawText writes s from column x, clipped to w cells.
func (a *App) drawText(x, y, w int, s string, style tcell.Style) {
	col := 0
	for _, r := range s {
		rw := uniseg.StringWidth(string(r))
		if r == '\t' {
			r, rw = ' ', 1
		}
		if col+rw > w {
			return
		}
		a.screen.SetContent(x+col, y, r, nil, style)
		col += rw
	}
}
