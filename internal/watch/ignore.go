package watch

import (
	"path"
	"path/filepath"
	"strings"
)

// Ignore is an ordered list of gitignore-style globs. A later pattern
// overrides an earlier one, so "!keep.log" after "*.log" keeps keep.log.
//
//	*.log                 a file name anywhere
//	/build                build at the workspace root only
//	tmp/                  directories only
//	**/node_modules/**    anything under node_modules
type Ignore struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	segs    []string
	negate  bool
	dirOnly bool
	rooted  bool
}

// NewIgnore compiles patterns. Blank lines and # comments are skipped.
func NewIgnore(patterns ...string) *Ignore {
	ig := &Ignore{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		var ip ignorePattern
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			ip.negate, p = true, rest
		}
		if rest, ok := strings.CutSuffix(p, "/"); ok {
			ip.dirOnly, p = true, rest
		}
		if rest, ok := strings.CutPrefix(p, "/"); ok {
			ip.rooted, p = true, rest
		}
		if p == "" {
			continue
		}
		ip.segs = strings.Split(p, "/")
		// A pattern with an inner slash is anchored, as in gitignore.
		if len(ip.segs) > 1 && ip.segs[0] != "**" {
			ip.rooted = true
		}
		ig.patterns = append(ig.patterns, ip)
	}
	return ig
}

// Match reports whether rel, a path relative to the workspace root, is
// ignored. A path below an ignored directory is ignored too.
func (ig *Ignore) Match(rel string, isDir bool) bool {
	if ig == nil || rel == "" || rel == "." {
		return false
	}
	segs := strings.Split(filepath.ToSlash(rel), "/")
	for n := 1; n <= len(segs); n++ {
		if ig.matchOne(segs[:n], n < len(segs) || isDir) {
			return true
		}
	}
	return false
}

func (ig *Ignore) matchOne(segs []string, isDir bool) bool {
	ignored := false
	for _, p := range ig.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.match(segs) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p ignorePattern) match(segs []string) bool {
	if p.rooted {
		return matchSegs(p.segs, segs)
	}
	for i := range segs {
		if matchSegs(p.segs, segs[i:]) {
			return true
		}
	}
	return false
}

// matchSegs matches pattern segments against the whole of name. "**"
// spans any number of segments.
func matchSegs(pat, name []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegs(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], name[0]); !ok {
			return false
		}
		pat, name = pat[1:], name[1:]
	}
	return len(name) == 0
}
