package eval

import (
	"errors"
	"fmt"
)

// Reason classifies an evaluation failure.
type Reason int

const (
	UnboundVariable Reason = iota + 1
	InvalidOperator
	NotApplicable
	NoMatchingCase
)

func (r Reason) String() string {
	switch r {
	case UnboundVariable:
		return "UnboundVariable"
	case InvalidOperator:
		return "InvalidOperator"
	case NotApplicable:
		return "NotApplicable"
	case NoMatchingCase:
		return "NoMatchingCase"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Sentinels for errors.Is. Any *Failure with the same Reason matches.
var (
	ErrUnboundVariable = &Failure{Reason: UnboundVariable}
	ErrInvalidOperator = &Failure{Reason: InvalidOperator}
	ErrNotApplicable   = &Failure{Reason: NotApplicable}
	ErrNoMatchingCase  = &Failure{Reason: NoMatchingCase}
)

// ErrStepLimit is returned by a Machine that ran out of its step budget.
var ErrStepLimit = errors.New("step limit exceeded")

// Failure is a terminal evaluation error. Construct describes the offending
// expression or value; Line and Column locate it when it came from source.
type Failure struct {
	Reason    Reason
	Construct string
	Line      int
	Column    int
}

func (f *Failure) Error() string {
	if f.Construct == "" {
		return f.Reason.String()
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Construct)
}

// Is matches failures by reason.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Reason == f.Reason
}

func failf(r Reason, line, col int, format string, args ...any) *Failure {
	return &Failure{Reason: r, Construct: fmt.Sprintf(format, args...), Line: line, Column: col}
}
