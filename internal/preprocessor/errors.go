package preprocessor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tacogips/cpre/internal/expr"
)

// ErrorKind categorizes preprocessing failures.
type ErrorKind int

const (
	// KindStructural indicates unbalanced conditionals or loops, or a bad inclusion.
	KindStructural ErrorKind = iota
	// KindUnknownDirective indicates a directive keyword that is not registered.
	KindUnknownDirective
	// KindUsage indicates a directive used with a missing or unexpected argument.
	KindUsage
	// KindEvaluation indicates an expression failure.
	KindEvaluation
	// KindIO indicates a read or write failure.
	KindIO
	// KindAborted indicates processing stopped by //#error.
	KindAborted
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindUnknownDirective:
		return "unknown directive"
	case KindUsage:
		return "usage"
	case KindEvaluation:
		return "evaluation"
	case KindIO:
		return "io"
	case KindAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// FilePosition is one frame of the inclusion stack.
type FilePosition struct {
	// Path is the file path.
	Path string
	// Line is the 1-indexed line number, 0 if nothing was read yet.
	Line int
}

// String returns "path:line".
func (p FilePosition) String() string {
	return fmt.Sprintf("%s:%d", p.Path, p.Line)
}

// ProcessError is a located preprocessing failure.
type ProcessError struct {
	// Kind is the error category.
	Kind ErrorKind
	// Message is the error message.
	Message string
	// Frames is the inclusion stack at the failure, root first.
	Frames []FilePosition
	// Directive is the source line being processed (optional).
	Directive string
	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	var b strings.Builder
	if n := len(e.Frames); n > 0 {
		b.WriteString(e.Frames[n-1].String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	for i := len(e.Frames) - 2; i >= 0; i-- {
		b.WriteString(" (included from ")
		b.WriteString(e.Frames[i].String())
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// Location returns the innermost frame, or a zero FilePosition.
func (e *ProcessError) Location() FilePosition {
	if len(e.Frames) == 0 {
		return FilePosition{}
	}
	return e.Frames[len(e.Frames)-1]
}

func newProcessError(kind ErrorKind, format string, args ...interface{}) *ProcessError {
	return &ProcessError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func wrapProcessError(kind ErrorKind, cause error, format string, args ...interface{}) *ProcessError {
	return &ProcessError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// locate converts err into a ProcessError carrying the state's inclusion stack.
func locate(st *State, line string, err error) *ProcessError {
	pe, ok := err.(*ProcessError)
	if !ok {
		kind := KindIO
		var ee *expr.EvalError
		if errors.As(err, &ee) {
			kind = KindEvaluation
		}
		pe = &ProcessError{Kind: kind, Message: kind.String() + " failure", Cause: err}
		if kind == KindEvaluation {
			pe.Message = "expression failed"
		}
	}
	if pe.Frames == nil {
		pe.Frames = st.Snapshot()
	}
	if pe.Directive == "" {
		pe.Directive = strings.TrimSpace(line)
	}
	return pe
}

// IsKind reports whether err is a ProcessError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ProcessError
	return errors.As(err, &pe) && pe.Kind == kind
}
