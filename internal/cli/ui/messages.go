// Package ui formats human-facing command output.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level represents the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures message formatting
type MessageOptions struct {
	Level        Level
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatMessage renders a message block with optional suggestions and help commands.
//
// Example output:
//
//	❌ TAG NOT FOUND: Tag 'tradeHeadr' not found in the Base Model.
//
//	   Did you mean: tradeHeader?
//
//	   → List tags: fpml tags --prefix trade
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder

	var header *color.Color
	var symbol string
	switch opts.Level {
	case LevelWarning:
		header = color.New(color.FgYellow, color.Bold)
		symbol = "⚠️"
	case LevelInfo:
		header = color.New(color.FgCyan, color.Bold)
		symbol = "ℹ️"
	default:
		header = color.New(color.FgRed, color.Bold)
		symbol = "❌"
	}
	if opts.NoColor {
		header.DisableColor()
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteMessage writes a formatted message block to w
func WriteMessage(w io.Writer, opts MessageOptions) {
	fmt.Fprint(w, FormatMessage(opts))
}

// TagNotFound formats a lookup miss
func TagNotFound(status string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "tag not found",
		Problem:     status,
		Suggestions: suggestions,
		HelpCommands: []string{
			"List tags: fpml tags",
			"Get help: fpml lookup --help",
		},
		NoColor: noColor,
	})
}

// NotApplicable formats a minimal-generation request for a non top-level root
func NotApplicable(problem string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "not applicable",
		Problem:     problem,
		Suggestions: suggestions,
		HelpCommands: []string{
			"List message roots: fpml tags --top-level",
		},
		NoColor: noColor,
	})
}

// FormatSuccess creates a success line
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success line to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// WriteField writes an aligned "label: value" line
func WriteField(w io.Writer, label string, value interface{}) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "  %-14s", label+":")
	fmt.Fprintf(w, " %v\n", value)
}
