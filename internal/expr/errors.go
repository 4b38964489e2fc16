package expr

import "fmt"

// EvalError reports a parse or evaluation failure of an expression.
type EvalError struct {
	// Expr is the source text of the expression being evaluated.
	Expr string
	// Message describes the failure.
	Message string
	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("%s (expression: %s)", e.Message, e.Expr)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *EvalError) Unwrap() error {
	return e.Cause
}

func newEvalError(format string, args ...interface{}) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...)}
}

func wrapEvalError(cause error, format string, args ...interface{}) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
