package core

import (
	"strings"

	"github.com/dshills/keybridge/internal/types"
)

// lineHunks compares base and text line by line. Lines shared at both ends
// are trimmed and whatever differs in between is reported as one hunk.
func lineHunks(base, text string) []types.Hunk {
	if base == text {
		return nil
	}
	a := strings.Split(base, "\n")
	b := strings.Split(text, "\n")

	pre := 0
	for pre < len(a) && pre < len(b) && a[pre] == b[pre] {
		pre++
	}
	suf := 0
	for suf < len(a)-pre && suf < len(b)-pre && a[len(a)-1-suf] == b[len(b)-1-suf] {
		suf++
	}
	removed := len(a) - pre - suf
	added := len(b) - pre - suf

	switch {
	case removed == 0 && added == 0:
		return nil
	case removed == 0:
		return []types.Hunk{{Kind: types.HunkAdded, Start: pre, Lines: added}}
	case added == 0:
		return []types.Hunk{{Kind: types.HunkRemoved, Start: pre}}
	default:
		return []types.Hunk{{Kind: types.HunkChanged, Start: pre, Lines: added}}
	}
}
