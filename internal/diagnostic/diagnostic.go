package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a single parse, import, lint or evaluation report
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Column   int
	File     string // optional; set for diagnostics from imported files
	Hint     string // optional suggestion
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Add appends a fully built diagnostic.
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...any) {
	d.Add(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...any) {
	d.Add(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// ErrorWithHint adds an error diagnostic with a hint
func (d *Diagnostics) ErrorWithHint(line, col int, msg, hint string) {
	d.Add(Diagnostic{Severity: Error, Message: msg, Line: line, Column: col, Hint: hint})
}

// WarningWithHint adds a warning diagnostic with a hint
func (d *Diagnostics) WarningWithHint(line, col int, msg, hint string) {
	d.Add(Diagnostic{Severity: Warning, Message: msg, Line: line, Column: col, Hint: hint})
}

// ErrorfInFile adds an error diagnostic with file path and formatted message
func (d *Diagnostics) ErrorfInFile(file string, line, col int, format string, args ...any) {
	d.Add(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Line: line, Column: col, File: file})
}

// Merge appends every diagnostic of other, stamping file on items that do
// not carry one yet.
func (d *Diagnostics) Merge(other *Diagnostics, file string) {
	if other == nil {
		return
	}
	for _, item := range other.items {
		if item.File == "" {
			item.File = file
		}
		d.items = append(d.items, item)
	}
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	return d.ErrorCount() > 0
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	return d.filter(Error)
}

// Warnings returns only the warning-level diagnostics
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.filter(Warning)
}

func (d *Diagnostics) filter(sev Severity) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == sev {
			out = append(out, item)
		}
	}
	return out
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	return len(d.filter(Error))
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	return len(d.filter(Warning))
}

// Sort orders diagnostics by file, line and column. It is stable, so
// diagnostics reported at the same position keep their order.
func (d *Diagnostics) Sort() {
	sort.SliceStable(d.items, func(i, j int) bool {
		a, b := d.items[i], d.items[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Format returns human-readable messages, one per line:
//
//	error[fact.fun:3:10]: unbound variable 'x'
//	  hint: did you mean 'y'?
//	warning[fact.fun:5:1]: let binding 'z' is never used
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		fileToUse := filename
		if item.File != "" {
			fileToUse = item.File
		}

		builder.WriteString(fmt.Sprintf("%s[%s:%d:%d]: %s",
			item.Severity.String(),
			fileToUse,
			item.Line,
			item.Column,
			item.Message,
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Err returns nil when there are no errors, and otherwise an error whose
// message is the formatted error-level diagnostics.
func (d *Diagnostics) Err(filename string) error {
	if !d.HasErrors() {
		return nil
	}
	errs := &Diagnostics{items: d.Errors()}
	return &ListError{Diagnostics: errs, File: filename}
}

// ListError adapts a collection of error diagnostics to the error interface.
type ListError struct {
	Diagnostics *Diagnostics
	File        string
}

func (e *ListError) Error() string {
	return e.Diagnostics.Format(e.File)
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
