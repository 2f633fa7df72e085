package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"ebbir/internal/ir"
)

// Level is the severity shown in a report header.
type Level string

const (
	Error Level = "error"
	Fatal Level = "fatal"
	Note  Level = "note"
	Help  Level = "help"
)

// Resolver maps entities to their position in a source text.
type Resolver interface {
	Position(e ir.AnyEntity) (Position, bool)
}

// Reporter renders findings for one source file.
type Reporter struct {
	filename string
	lines    []string
	resolver Resolver
}

// NewReporter creates a reporter for a file. source and resolver may be
// empty; findings are then reported by entity name only.
func NewReporter(filename, source string, resolver Resolver) *Reporter {
	r := &Reporter{
		filename: filename,
		resolver: resolver,
	}

	if source != "" {
		r.lines = strings.Split(source, "\n")
	}

	return r
}

// Locate returns the source position of f, if known.
func (r *Reporter) Locate(f Finding) (Position, bool) {
	if f.Position.IsValid() {
		return f.Position, true
	}

	if r.resolver == nil {
		return Position{}, false
	}

	if pos, ok := r.resolver.Position(f.Location); ok {
		return pos, true
	}

	if f.HasInst {
		return r.resolver.Position(ir.AnyInst(f.Inst))
	}

	return Position{}, false
}

// Format renders a finding with source context in the style of rustc.
func (r *Reporter) Format(f Finding) string {
	var result strings.Builder

	levelColor := levelColor(Error)
	dim := color.New(color.Faint).SprintFunc()

	// Header: error[V0011]: message
	fmt.Fprintf(&result, "%s[%s]: %s\n", levelColor(string(Error)), f.Code, f.Message)

	pos, ok := r.Locate(f)

	lineNumberWidth := getLineNumberWidth(pos.Line)
	indent := strings.Repeat(" ", lineNumberWidth)

	if ok {
		fmt.Fprintf(&result, "%s %s %s:%d:%d (%s)\n", indent, dim("-->"), r.filename, pos.Line, pos.Column, f.Location)
	} else {
		fmt.Fprintf(&result, "%s %s %s: %s\n", indent, dim("-->"), r.filename, f.Location)
	}

	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if ok {
		r.writeContext(&result, pos, f.Length, lineNumberWidth)
	}

	noteColor := color.New(color.FgBlue).SprintFunc()

	fmt.Fprintf(&result, "%s %s %s %s check\n", indent, dim("│"), noteColor("note:"), f.Category)

	if f.HasInst && f.Location != ir.AnyInst(f.Inst) {
		fmt.Fprintf(&result, "%s %s %s at %v\n", indent, dim("│"), noteColor("note:"), f.Inst)
	}

	for _, note := range f.Notes {
		fmt.Fprintf(&result, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	if f.Help != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&result, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), f.Help)
	}

	result.WriteString("\n")

	return result.String()
}

// FormatError renders a positioned error that is not a finding, such as a
// syntax error from the reader.
func (r *Reporter) FormatError(code, message string, pos Position, length int) string {
	var result strings.Builder

	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(&result, "%s[%s]: %s\n", levelColor(Error)(string(Error)), code, message)

	lineNumberWidth := getLineNumberWidth(pos.Line)
	indent := strings.Repeat(" ", lineNumberWidth)

	if pos.IsValid() {
		fmt.Fprintf(&result, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, pos.Line, pos.Column)
		fmt.Fprintf(&result, "%s %s\n", indent, dim("│"))
		r.writeContext(&result, pos, length, lineNumberWidth)
	} else {
		fmt.Fprintf(&result, "%s %s %s\n", indent, dim("-->"), r.filename)
	}

	if desc := Describe(code); desc != "" {
		fmt.Fprintf(&result, "%s %s %s %s\n", indent, dim("│"), color.New(color.FgBlue).Sprint("note:"), desc)
	}

	result.WriteString("\n")

	return result.String()
}

// writeContext writes the line at pos with its neighbours and a marker.
func (r *Reporter) writeContext(result *strings.Builder, pos Position, length, lineNumberWidth int) {
	if pos.Line > len(r.lines) {
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	indent := strings.Repeat(" ", lineNumberWidth)

	if pos.Line > 1 {
		fmt.Fprintf(result, "%s %s %s\n",
			dim(fmt.Sprintf("%*d", lineNumberWidth, pos.Line-1)), dim("│"), r.lines[pos.Line-2])
	}

	fmt.Fprintf(result, "%s %s %s\n",
		bold(fmt.Sprintf("%*d", lineNumberWidth, pos.Line)), dim("│"), r.lines[pos.Line-1])
	fmt.Fprintf(result, "%s %s %s\n", indent, dim("│"), createMarker(pos.Column, length))

	if pos.Line < len(r.lines) {
		fmt.Fprintf(result, "%s %s %s\n",
			dim(fmt.Sprintf("%*d", lineNumberWidth, pos.Line+1)), dim("│"), r.lines[pos.Line])
	}
}

// FormatAll renders findings in order.
func (r *Reporter) FormatAll(fs []Finding) string {
	var b strings.Builder

	for _, f := range fs {
		b.WriteString(r.Format(f))
	}

	return b.String()
}

// FormatFatal renders a construction error of function fn.
func (r *Reporter) FormatFatal(fn string, err error) string {
	code := FatalCode(err)
	if code == "" {
		return fmt.Sprintf("%s: %s: %v\n", levelColor(Fatal)(string(Fatal)), fn, err)
	}

	return fmt.Sprintf("%s[%s]: %s: %v\n  %s %s\n",
		levelColor(Fatal)(string(Fatal)), code, fn, err,
		color.New(color.FgBlue).Sprint("note:"), Describe(code))
}

func levelColor(level Level) func(...interface{}) string {
	switch level {
	case Fatal:
		return color.New(color.FgMagenta, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// createMarker creates the underline marker for a finding
func createMarker(column, length int) string {
	if length <= 0 {
		length = 1
	}

	spaces := strings.Repeat(" ", max(0, column-1))

	return spaces + color.New(color.FgRed, color.Bold).Sprint(strings.Repeat("^", length))
}

// getLineNumberWidth calculates the width needed for line numbers
func getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3 // minimum width for visual alignment
	}

	return width
}
