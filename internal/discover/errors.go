package discover

import "fmt"

// ErrorType represents the type of discovery error.
type ErrorType int

const (
	// SourceNotFound indicates a source directory does not exist.
	SourceNotFound ErrorType = iota
	// SourceNotDirectory indicates a source path is not a directory.
	SourceNotDirectory
	// WalkFailed indicates the directory walk failed.
	WalkFailed
	// DuplicateDestination indicates two source files map to the same destination.
	DuplicateDestination
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	switch t {
	case SourceNotFound:
		return "SourceNotFound"
	case SourceNotDirectory:
		return "SourceNotDirectory"
	case WalkFailed:
		return "WalkFailed"
	case DuplicateDestination:
		return "DuplicateDestination"
	default:
		return "Unknown"
	}
}

// DiscoverError represents a failure while collecting source files.
type DiscoverError struct {
	// Type is the error type classification.
	Type ErrorType
	// Path is the path that caused the error.
	Path string
	// Message is the human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *DiscoverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("discover error [%s] at %s: %s: %v", e.Type, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("discover error [%s] at %s: %s", e.Type, e.Path, e.Message)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *DiscoverError) Unwrap() error {
	return e.Cause
}

func newDiscoverError(typ ErrorType, path, message string, cause error) *DiscoverError {
	return &DiscoverError{Type: typ, Path: path, Message: message, Cause: cause}
}
