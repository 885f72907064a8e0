package zcss

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/zwebsuite/zcss/token"
)

// DefaultContextLines is the number of source lines shown around the error
// line when FormatErrorOptions.ContextLines is zero.
const DefaultContextLines = 2

// FormatErrorOptions configures FormatError.
type FormatErrorOptions struct {
	// Color enables ANSI colors regardless of the terminal.
	Color bool

	// ContextLines is the number of lines shown before and after the error
	// line. Negative values show only the error line.
	ContextLines int
}

// FormatError renders err with an excerpt of src and a caret under the
// offending column:
//
//	app.css:1:12: expected ":", found "}"
//	 1 | .a { color }
//	   |            ^
//
// Errors that carry no position are returned as their message.
func FormatError(err error, src string, opts FormatErrorOptions) string {
	if err == nil {
		return ""
	}

	pos, ok := errorPos(err)
	if !ok {
		return err.Error()
	}

	msgColor := color.New(color.FgRed, color.Bold)
	gutterColor := color.New(color.FgHiBlack)
	caretColor := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{msgColor, gutterColor, caretColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	lines := splitLines(src)
	if pos.Line > len(lines) {
		return err.Error()
	}

	n := opts.ContextLines
	if n == 0 {
		n = DefaultContextLines
	} else if n < 0 {
		n = 0
	}
	first, last := max(1, pos.Line-n), min(len(lines), pos.Line+n)
	width := len(fmt.Sprint(last))

	var buf strings.Builder
	buf.WriteString(msgColor.Sprint(err.Error()))
	buf.WriteString("\n")
	for i := first; i <= last; i++ {
		line := expandTabs(lines[i-1])
		buf.WriteString(gutterColor.Sprintf("%*d | ", width+1, i))
		buf.WriteString(line)
		buf.WriteString("\n")

		if i == pos.Line {
			prefix := columnPrefix(lines[i-1], pos.Column)
			buf.WriteString(gutterColor.Sprintf("%*s | ", width+1, ""))
			buf.WriteString(strings.Repeat(" ", runewidth.StringWidth(expandTabs(prefix))))
			buf.WriteString(caretColor.Sprint("^"))
			buf.WriteString("\n")
		}
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// errorPos extracts the position of a lexer or parser error.
func errorPos(err error) (token.Pos, bool) {
	var lerr *LexError
	if errors.As(err, &lerr) {
		return lerr.Pos, lerr.Pos.IsValid()
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.Pos, perr.Pos.IsValid()
	}
	return token.Pos{}, false
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n")

// splitLines splits src on the same line breaks used for positions.
func splitLines(src string) []string {
	return strings.Split(newlines.Replace(src), "\n")
}

// columnPrefix returns the part of line before the 1-based rune column.
func columnPrefix(line string, column int) string {
	i := 0
	for off := range line {
		if i == column-1 {
			return line[:off]
		}
		i++
	}
	return line
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
