package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"jsopt/internal/ast"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// CompilerError describes input the optimizer refuses or cannot read.
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // E0101 and up, see codes.go
	Message     string       // what is wrong, in lower case
	Position    ast.Position // start of the offending construct
	Length      int          // width of the caret span
	Suggestions []Suggestion // rewrites that bring the input into the subset
	Notes       []string
	HelpText    string
}

// Suggestion is a rewrite that would make the input optimizable.
type Suggestion struct {
	Message string
}

// Error renders the error on one line, e.g.
// "input.js:3:5: error[E0101]: labeled statements are not supported".
func (e CompilerError) Error() string {
	var b strings.Builder
	if e.Position.Filename != "" {
		b.WriteString(e.Position.Filename)
		b.WriteString(":")
	}
	if e.Position.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Position.Line, e.Position.Column)
	} else if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(e.title())
	return b.String()
}

func (e CompilerError) title() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Level, e.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Level, e.Code, e.Message)
}

// help is the help line of e. Unsupported and internal errors without
// their own help text get the one of their category.
func (e CompilerError) help() string {
	if e.HelpText != "" {
		return e.HelpText
	}
	switch GetErrorCategory(e.Code) {
	case "Unsupported":
		return "only the supported script subset can be optimized; the input is left as written"
	case "Internal":
		return "the input is valid; please report it together with this message"
	}
	return ""
}

// label is the text printed next to the caret: the description of the
// code when it adds to the message.
func (e CompilerError) label() string {
	desc := GetErrorDescription(e.Code)
	if e.Code == "" || desc == "Unknown error code" {
		return ""
	}
	desc = strings.ToLower(desc[:1]) + desc[1:]
	if strings.EqualFold(desc, e.Message) {
		return ""
	}
	return desc
}

// ErrorReporter renders compiler errors against the script they refer to.
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter creates a reporter for source read from filename.
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatError renders err as
//
//	error[E0110]: try statements are not supported
//	    --> a.js:1:15
//	     |
//	   1 | function t(){ try { f() } finally { g() } }
//	     |               ^ statement form is not supported
//	     = help: only the supported script subset can be optimized
//
// Errors without a position, such as internal ones, skip the excerpt.
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var b strings.Builder
	paint := levelColor(err.Level)
	dim := color.New(color.Faint).SprintFunc()
	gutter := strings.Repeat(" ", gutterWidth(err.Position.Line))

	fmt.Fprintf(&b, "%s%s\n", paint(string(err.Level)), strings.TrimPrefix(err.title(), string(err.Level)))

	if err.Position.Line > 0 && err.Position.Line <= len(er.lines) {
		fmt.Fprintf(&b, "%s %s %s:%d:%d\n", gutter, dim("-->"), er.filename, err.Position.Line, err.Position.Column)
		fmt.Fprintf(&b, "%s %s\n", gutter, dim("|"))
		er.writeExcerpt(&b, err, gutter)
	} else if er.filename != "" {
		fmt.Fprintf(&b, "%s %s %s\n", gutter, dim("-->"), er.filename)
	}

	for _, note := range err.Notes {
		fmt.Fprintf(&b, "%s %s %s %s\n", gutter, dim("="), color.New(color.FgBlue).Sprint("note:"), note)
	}
	green := color.New(color.FgGreen).SprintFunc()
	for _, s := range err.Suggestions {
		fmt.Fprintf(&b, "%s %s %s %s\n", gutter, dim("="), green("try:"), s.Message)
	}
	if help := err.help(); help != "" {
		fmt.Fprintf(&b, "%s %s %s %s\n", gutter, dim("="), green("help:"), help)
	}

	b.WriteString("\n")
	return b.String()
}

// writeExcerpt prints the line before the error, if any, the error line
// and the caret under the offending span.
func (er *ErrorReporter) writeExcerpt(b *strings.Builder, err CompilerError, gutter string) {
	dim := color.New(color.Faint).SprintFunc()
	width := len(gutter)
	line := err.Position.Line

	if line > 1 && strings.TrimSpace(er.lines[line-2]) != "" {
		fmt.Fprintf(b, "%s %s %s\n", dim(fmt.Sprintf("%*d", width, line-1)), dim("|"), er.lines[line-2])
	}
	fmt.Fprintf(b, "%s %s %s\n", color.New(color.Bold).Sprintf("%*d", width, line), dim("|"), er.lines[line-1])

	caret := marker(err.Position.Column, err.Length, err.Level)
	if label := err.label(); label != "" {
		caret += " " + levelColor(err.Level)(label)
	}
	fmt.Fprintf(b, "%s %s %s\n", gutter, dim("|"), caret)
}

func levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// marker underlines length columns starting at column.
func marker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}
	return strings.Repeat(" ", max(0, column-1)) + levelColor(level)(strings.Repeat("^", length))
}

// gutterWidth is the width of the line number column, at least three.
func gutterWidth(line int) int {
	return max(3, len(fmt.Sprint(line)))
}
