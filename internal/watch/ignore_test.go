package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnore_Match(t *testing.T) {
	ig := NewIgnore(
		"# editor droppings",
		"*.swp",
		"*.log",
		"!keep.log",
		"/build",
		"tmp/",
		"**/node_modules/**",
		"docs/*.tmp",
		"",
	)

	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"main.go", false, false},
		{".main.go.swp", false, true},
		{"pkg/.x.swp", false, true},
		{"logs/app.log", false, true},
		{"logs/keep.log", false, false},
		{"build", true, true},
		{"build/out.bin", false, true},
		{"src/build", true, false},
		{"tmp", true, true},
		{"tmp", false, false},
		{"tmp/scratch.go", false, true},
		{"web/node_modules/react/index.js", false, true},
		{"docs/a.tmp", false, true},
		{"sub/docs/a.tmp", false, false},
		{".", true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ig.Match(tt.rel, tt.isDir), "%s (dir=%v)", tt.rel, tt.isDir)
	}
}

func TestIgnore_Nil(t *testing.T) {
	var ig *Ignore
	assert.False(t, ig.Match("anything", false))
	assert.False(t, NewIgnore().Match("anything", true))
}

func TestParseHead(t *testing.T) {
	assert.Equal(t, "main", parseHead([]byte("ref: refs/heads/main\n")))
	assert.Equal(t, "feature/x", parseHead([]byte("ref: refs/heads/feature/x")))
	assert.Equal(t, "refs/remotes/origin/main", parseHead([]byte("ref: refs/remotes/origin/main")))
	assert.Equal(t, "3f2a9c1", parseHead([]byte("3f2a9c1d0e5b7a8c9d0e1f2a3b4c5d6e7f8a9b0c\n")))
	assert.Equal(t, "", parseHead(nil))
}
