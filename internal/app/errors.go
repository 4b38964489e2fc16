package app

import "fmt"

// AppErrorType represents the type of application error.
type AppErrorType int

const (
	// ConfigLoadFailed indicates the configuration could not be loaded.
	ConfigLoadFailed AppErrorType = iota
	// ValidationFailed indicates options or configuration failed validation.
	ValidationFailed
	// DiscoveryFailed indicates the source tree could not be walked.
	DiscoveryFailed
	// DefinitionFailed indicates a -D definition could not be parsed or evaluated.
	DefinitionFailed
	// ProcessFailed indicates one or more files failed to preprocess.
	ProcessFailed
	// EvalFailed indicates an expression given on the command line failed.
	EvalFailed
)

// String returns the string representation of the error type.
func (t AppErrorType) String() string {
	switch t {
	case ConfigLoadFailed:
		return "ConfigLoadFailed"
	case ValidationFailed:
		return "ValidationFailed"
	case DiscoveryFailed:
		return "DiscoveryFailed"
	case DefinitionFailed:
		return "DefinitionFailed"
	case ProcessFailed:
		return "ProcessFailed"
	case EvalFailed:
		return "EvalFailed"
	default:
		return "Unknown"
	}
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the error type.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigLoadError creates a configuration load error.
func NewConfigLoadError(message string, cause error) *AppError {
	return NewAppError(ConfigLoadFailed, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ValidationFailed, message, cause)
}

// NewDiscoveryError creates a discovery error.
func NewDiscoveryError(message string, cause error) *AppError {
	return NewAppError(DiscoveryFailed, message, cause)
}

// NewDefinitionError creates a definition error.
func NewDefinitionError(message string, cause error) *AppError {
	return NewAppError(DefinitionFailed, message, cause)
}
