// Package errors provides the categorized error type used to tell fatal
// configuration and filesystem problems apart from per-post warnings, and to
// pick the process exit code.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory classifies a BlogError.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryContent    ErrorCategory = "content"
	CategoryValidation ErrorCategory = "validation"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates whether the run can continue.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityWarning ErrorSeverity = "warning" // Reported, processing continues
)

// BlogError is a structured error with category, severity and context.
type BlogError struct {
	Category ErrorCategory
	Severity ErrorSeverity
	Message  string
	Cause    error
	Context  map[string]any
}

func (e *BlogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

func (e *BlogError) Unwrap() error {
	return e.Cause
}

// WithContext adds a context value and returns the error for chaining.
func (e *BlogError) WithContext(key string, value any) *BlogError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a BlogError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *BlogError {
	return &BlogError{Category: category, Severity: severity, Message: message}
}

// Wrap creates a BlogError around an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BlogError {
	return &BlogError{Category: category, Severity: severity, Message: message, Cause: err}
}

// ConfigError is shorthand for a fatal configuration error.
func ConfigError(err error, format string, args ...any) *BlogError {
	return Wrap(err, CategoryConfig, SeverityFatal, fmt.Sprintf(format, args...))
}

// FileSystemError is shorthand for a fatal filesystem error.
func FileSystemError(err error, format string, args ...any) *BlogError {
	return Wrap(err, CategoryFileSystem, SeverityFatal, fmt.Sprintf(format, args...))
}

// ContentWarning is shorthand for a recoverable problem with one content file.
func ContentWarning(err error, path, message string) *BlogError {
	return Wrap(err, CategoryContent, SeverityWarning, message).WithContext("path", path)
}

// As finds the first BlogError in err's chain.
func As(err error) (*BlogError, bool) {
	var be *BlogError
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsCategory reports whether err carries a BlogError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := As(err); ok {
		return be.Category == category
	}
	return false
}

// IsFatal reports whether err should abort the run. Unclassified errors are
// treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if be, ok := As(err); ok {
		return be.Severity == SeverityFatal
	}
	return true
}
