package bridge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/types"
)

func TestOperation(t *testing.T) {
	op := core.Op{ID: "c1"}
	tests := []struct {
		name string
		in   Intent
		want core.Operation
	}{
		{"key", KeyInput{Key: types.Char('j')}, core.Press{Op: op, Key: types.Char('j')}},
		{"special key", KeyInput{Key: types.KeyPress{Key: types.KeyEscape}}, core.Press{Op: op, Key: types.KeyPress{Key: types.KeyEscape}}},
		{
			"click",
			PointerAction{Kind: PointerClick, View: 2, Pos: types.Position{Line: 1, Column: 4}},
			core.Click{Op: op, View: 2, Pos: types.Position{Line: 1, Column: 4}},
		},
		{
			"drag extends",
			PointerAction{Kind: PointerDrag, View: 2, Pos: types.Position{Line: 3}},
			core.Click{Op: op, View: 2, Pos: types.Position{Line: 3}, Extend: true},
		},
		{"scroll", PointerAction{Kind: PointerScroll, View: 1, Lines: -3}, core.Scroll{Op: op, View: 1, Lines: -3}},
		{
			"command",
			CommandInvocation{Name: "open", Args: []string{"a.go"}, Source: types.SourcePalette},
			core.Run{Op: op, Command: "open", Args: []string{"a.go"}, Source: types.SourcePalette},
		},
		{"resize", WindowResized{Width: 120, Height: 40}, core.Resize{Op: op, Width: 120, Height: 40}},
		{"focus", FocusChanged{Focused: true}, core.SetHostFocus{Op: op, Focused: true}},
		{"theme", ThemeChanged{Theme: "dark"}, core.SetTheme{Op: op, Theme: "dark"}},
		{"font", FontSizeChanged{Size: 13.5}, core.SetFontSize{Op: op, Size: 13.5}},
		{"external file", ExternalFileChanged{Path: "/w/a.go"}, core.ReloadPath{Op: op, Path: "/w/a.go"}},
		{"memory", MemoryPressure{Level: types.MemoryHigh}, core.RelievePressure{Op: op, Level: types.MemoryHigh}},
		{
			"accessibility",
			AccessibilityChanged{HighContrast: true},
			core.SetAccessibility{Op: op, HighContrast: true},
		},
		{
			"degradation",
			PerformanceDegraded{Metric: "frame_ms", Value: 40, Threshold: 16},
			core.ReportDegradation{Op: op, Metric: "frame_ms", Value: 40, Threshold: 16},
		},
		{"view", ViewSelected{View: 3}, core.FocusView{Op: op, View: 3}},
		{"prompt", PromptSubmitted{Prompt: "p1", Text: "x"}, core.SubmitPrompt{Op: op, Prompt: "p1", Text: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Operation(tt.in, "c1")
			if err != nil {
				t.Fatalf("Operation: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("operation mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOperation_CopiesArgs(t *testing.T) {
	args := []string{"a.go"}
	op, err := Operation(CommandInvocation{Name: "open", Args: args}, "c1")
	assert.NoError(t, err)
	args[0] = "b.go"
	assert.Equal(t, []string{"a.go"}, op.(core.Run).Args)
}

func TestOperation_Invalid(t *testing.T) {
	tests := []Intent{
		KeyInput{Key: types.KeyPress{Key: types.KeyRune}},
		PointerAction{Kind: PointerClick},
		PointerAction{Kind: PointerKind(9), View: 1},
		CommandInvocation{},
		WindowResized{Width: 0, Height: 10},
		ThemeChanged{},
		FontSizeChanged{Size: -1},
		ExternalFileChanged{},
		PerformanceDegraded{},
		ViewSelected{},
		PromptSubmitted{Text: "x"},
		nil,
	}
	for _, in := range tests {
		_, err := Operation(in, "c1")
		assert.ErrorIs(t, err, ErrUntranslatable, "%T", in)
	}
}
