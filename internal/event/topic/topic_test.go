package topic

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic_DomainAndVariant(t *testing.T) {
	tests := []struct {
		topic   Topic
		domain  string
		variant string
	}{
		{"document.closed", "document", "closed"},
		{"lsp.progress.updated", "lsp", "progress.updated"},
		{"vcs", "vcs", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic), func(t *testing.T) {
			assert.Equal(t, tt.domain, tt.topic.Domain())
			assert.Equal(t, tt.variant, tt.topic.Variant())
		})
	}
}

func TestTopic_Scope(t *testing.T) {
	assert.Equal(t, Topic("document.**"), Topic("document").Scope())
	assert.Equal(t, Topic("document.closed"), Topic("document.closed").Scope())
	assert.Equal(t, Topic("*"), Topic("*").Scope())
	assert.Equal(t, Topic(""), Topic("").Scope())
}

func TestTopic_IsValid(t *testing.T) {
	assert.True(t, Topic("view.focused").IsValid())
	assert.True(t, Topic("ui").IsValid())
	assert.False(t, Topic("").IsValid())
	assert.False(t, Topic(".view").IsValid())
	assert.False(t, Topic("view.").IsValid())
	assert.False(t, Topic("view..focused").IsValid())
}

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"document.closed", "document.closed", true},
		{"document.closed", "document.opened", false},
		{"document.closed", "document.*", true},
		{"lsp.progress.updated", "lsp.*", false},
		{"lsp.progress.updated", "lsp.**", true},
		{"lsp.progress.updated", "lsp.progress.*", true},
		{"view.closed", "*.closed", true},
		{"document.closed", "**", true},
		{"document", "document.**", true},
		{"document.closed", "document.closed.**", true},
		{"document.closed", "view.**", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, Topic("lsp.progress.started"), Join("lsp", "progress", "started"))
	assert.Equal(t, Topic("ui.theme_changed"), Topic("ui").Child("theme_changed"))
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher()
	for _, p := range []Topic{"document.**", "document.closed", "*.closed", "view.*", "lsp.progress.*"} {
		require.True(t, m.Add(p))
	}
	require.False(t, m.Add("document.closed"), "duplicate pattern")
	require.False(t, m.Add(""), "invalid pattern")
	assert.Equal(t, 5, m.Len())

	got := m.Match("document.closed")
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []Topic{"*.closed", "document.**", "document.closed"}, got)

	assert.ElementsMatch(t, []Topic{"view.*", "*.closed"}, m.Match("view.closed"))
	assert.ElementsMatch(t, []Topic{"lsp.progress.*"}, m.Match("lsp.progress.updated"))
	assert.Empty(t, m.Match("workspace.file_created"))
}

func TestMatcher_MultiWildcardDeduplicates(t *testing.T) {
	m := NewMatcher()
	m.Add("**")
	m.Add("a.**.c")

	assert.Equal(t, []Topic{"**"}, m.Match("x"))
	assert.ElementsMatch(t, []Topic{"**", "a.**.c"}, m.Match("a.c.c.c"))
}

func TestMatcher_Remove(t *testing.T) {
	m := NewMatcher()
	m.Add("editor.mode_changed")
	m.Add("editor.**")

	assert.True(t, m.Remove("editor.mode_changed"))
	assert.False(t, m.Remove("editor.mode_changed"))
	assert.False(t, m.Remove("missing.topic"))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []Topic{"editor.**"}, m.Match("editor.mode_changed"))

	assert.True(t, m.Remove("editor.**"))
	assert.Empty(t, m.Match("editor.mode_changed"))
	assert.Empty(t, m.root.children, "empty branches are pruned")
}
