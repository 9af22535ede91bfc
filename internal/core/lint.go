package core

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/keybridge/internal/types"
)

const maxLineLength = 120

// lint runs the built-in document checks.
func lint(doc *Document) []types.Diagnostic {
	var out []types.Diagnostic
	for i, line := range strings.Split(doc.Text(), "\n") {
		n := utf8.RuneCountInString(line)
		if trimmed := strings.TrimRight(line, " \t"); len(trimmed) < len(line) {
			col := utf8.RuneCountInString(trimmed)
			out = append(out, diag(i, col, n, types.SeverityWarning, "trailing-whitespace", "trailing whitespace"))
		}
		for _, marker := range []string{"TODO", "FIXME"} {
			if j := strings.Index(line, marker); j >= 0 {
				col := utf8.RuneCountInString(line[:j])
				out = append(out, diag(i, col, col+len(marker), types.SeverityInfo, "marker", marker+" comment"))
			}
		}
		if n > maxLineLength {
			out = append(out, diag(i, maxLineLength, n, types.SeverityHint, "line-length", "line longer than 120 characters"))
		}
	}
	return out
}

func diag(line, from, to int, sev types.Severity, code, msg string) types.Diagnostic {
	return types.Diagnostic{
		Span:     types.Span{Start: types.Position{Line: line, Column: from}, End: types.Position{Line: line, Column: to}},
		Severity: sev,
		Message:  msg,
		Source:   "keybridge",
		Code:     code,
	}
}
