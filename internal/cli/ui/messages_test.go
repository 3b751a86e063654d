package ui

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormatMessage(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name        string
		opts        MessageOptions
		contains    []string
		notContains []string
	}{
		{
			name: "error with context",
			opts: MessageOptions{
				Level:   LevelError,
				Context: "tag not found",
				Problem: "Tag 'x' not found in the Base Model.",
			},
			contains:    []string{"❌", "TAG NOT FOUND: Tag 'x' not found in the Base Model."},
			notContains: []string{"Did you mean"},
		},
		{
			name: "suggestions",
			opts: MessageOptions{
				Problem:     "missing",
				Suggestions: []string{"tradeHeader", "tradeDate"},
			},
			contains: []string{"Did you mean: tradeHeader, tradeDate?"},
		},
		{
			name: "help commands",
			opts: MessageOptions{
				Level:        LevelInfo,
				Problem:      "hint",
				HelpCommands: []string{"List tags: fpml tags"},
			},
			contains: []string{"ℹ️ hint", "→ List tags: fpml tags"},
		},
		{
			name:     "warning",
			opts:     MessageOptions{Level: LevelWarning, Problem: "careful", NoColor: true},
			contains: []string{"⚠️ careful"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatMessage(tt.opts)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestTagNotFound(t *testing.T) {
	out := TagNotFound("Tag 'tradeHeadr' not found in the Base Model.", []string{"tradeHeader"}, true)
	assert.Contains(t, out, "TAG NOT FOUND")
	assert.Contains(t, out, "Did you mean: tradeHeader?")
	assert.Contains(t, out, "→ List tags: fpml tags")
}

func TestNotApplicable(t *testing.T) {
	out := NotApplicable("root tag 'header' is not a top-level message element", nil, true)
	assert.Contains(t, out, "NOT APPLICABLE")
	assert.Contains(t, out, "fpml tags --top-level")
}

func TestWriteSuccessAndField(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	WriteSuccess(&buf, "done", false)
	WriteField(&buf, "Tags", 42)

	assert.Equal(t, "✓ done\n  "+fmt.Sprintf("%-14s", "Tags:")+" 42\n", buf.String())
}
