// Package diag implements the compiler's append-only diagnostics buffer.
//
// Every diagnostic carries a source name, a 1-based line/column, a severity,
// a stable numeric code, and a message. Diagnostics are never rewritten once
// emitted; the parser accumulates them and keeps going so one source file
// can surface more than one problem per compile.
package diag

import (
	"fmt"
	"strings"
)

// Severity distinguishes a hard failure from an advisory.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Location is the (source, line, column) triple attached to every token,
// expression, and diagnostic. Lines and columns are 1-based.
type Location struct {
	Source string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.Source
	}
	return fmt.Sprintf("%s(%d,%d)", l.Source, l.Line, l.Column)
}

// Diagnostic is a single error or warning: a message plus the location
// that produced it. Caret-style formatting takes the original source as
// an argument (see FormatWithContext).
type Diagnostic struct {
	Location Location
	Severity Severity
	Code     int
	Message  string
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped like any other Go error.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s %d: %s", d.Location, d.Severity, d.Code, d.Message)
}

// FormatWithContext renders the diagnostic together with the offending
// source line and a caret pointing at the column.
func (d *Diagnostic) FormatWithContext(source string) string {
	if source == "" || d.Location.Line == 0 {
		return d.Error()
	}
	lines := strings.Split(source, "\n")
	lineNum := d.Location.Line
	if lineNum < 1 || lineNum > len(lines) {
		return d.Error()
	}
	line := lines[lineNum-1]
	col := d.Location.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d: %s\n", d.Severity, d.Code, d.Message)
	fmt.Fprintf(&sb, "  --> %s:%d:%d\n", d.Location.Source, lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

// Bag is the append-only diagnostics buffer owned by one compilation.
type Bag struct {
	diagnostics []*Diagnostic
	errorCount  int
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d *Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
	if d.Severity == Error {
		b.errorCount++
	}
}

// Errorf appends an error-severity diagnostic with the given numeric code.
func (b *Bag) Errorf(loc Location, code int, format string, args ...interface{}) {
	b.Add(&Diagnostic{Location: loc, Severity: Error, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Warningf appends a warning-severity diagnostic with the given numeric code.
func (b *Bag) Warningf(loc Location, code int, format string, args ...interface{}) {
	b.Add(&Diagnostic{Location: loc, Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error-severity diagnostic was emitted.
// Compilation succeeds iff this is false.
func (b *Bag) HasErrors() bool {
	return b.errorCount > 0
}

// All returns every diagnostic emitted so far, in emission order.
func (b *Bag) All() []*Diagnostic {
	return b.diagnostics
}

// Len returns the number of diagnostics recorded.
func (b *Bag) Len() int {
	return len(b.diagnostics)
}

// Truncate discards every diagnostic recorded after index n, used by
// speculative lookahead (e.g. cast-vs-parenthesized-expression
// disambiguation) that needs to probe the grammar without leaving
// phantom diagnostics behind when the probe doesn't match.
func (b *Bag) Truncate(n int) {
	for _, d := range b.diagnostics[n:] {
		if d.Severity == Error {
			b.errorCount--
		}
	}
	b.diagnostics = b.diagnostics[:n]
}

// String renders the whole bag as the diagnostics string returned at the
// compiler's external boundary.
func (b *Bag) String() string {
	var sb strings.Builder
	for _, d := range b.diagnostics {
		sb.WriteString(d.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatAll renders every diagnostic with source context, one per line
// group.
func (b *Bag) FormatAll(source string) string {
	var sb strings.Builder
	for i, d := range b.diagnostics {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.FormatWithContext(source))
	}
	return sb.String()
}
