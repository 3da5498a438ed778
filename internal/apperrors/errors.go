// Package apperrors provides typed error handling for the portal.
// It uses struct-based errors with separate user-safe and internal messages.
package apperrors

import "fmt"

// Code categorizes errors for consistent handling across the application.
type Code int

// Error codes for categorizing application errors.
const (
	// CodeUnknown indicates an unspecified error type
	CodeUnknown Code = iota
	// CodeProviderFailure indicates the identity provider denied or failed the login
	CodeProviderFailure
	// CodeAccountNotFound indicates no active account matches the verified email
	CodeAccountNotFound
	// CodeDatabase indicates a database operation failure
	CodeDatabase
	// CodeUnrecognizedRole indicates the account's role is outside the known set
	CodeUnrecognizedRole
	// CodeUnauthenticated indicates a valid session is required
	CodeUnauthenticated
	// CodeForbidden indicates the session's role does not grant access
	CodeForbidden
)

// Error represents a domain error with separate user-safe and internal messages.
// The Message field is always safe to expose to clients.
// The Internal field contains debugging details and should only be logged.
type Error struct {
	Code     Code   // Error category for handler mapping
	Message  string // User-safe message (always exposable)
	Internal string // Internal details (for logging only)
	Err      error  // Wrapped underlying error
}

// Error implements the error interface.
// Returns the user-safe message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithInternal adds internal debugging details to the error.
func (e *Error) WithInternal(format string, args ...any) *Error {
	e.Internal = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeProviderFailure:
		return "provider_failure"
	case CodeAccountNotFound:
		return "account_not_found"
	case CodeDatabase:
		return "database"
	case CodeUnrecognizedRole:
		return "unrecognized_role"
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodeForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Is reports whether target matches this error's code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// ProviderFailure creates a new provider failure error with the given message.
func ProviderFailure(message string) *Error {
	return &Error{
		Code:    CodeProviderFailure,
		Message: message,
	}
}

// AccountNotFound creates a new account not found error with the given message.
func AccountNotFound(message string) *Error {
	return &Error{
		Code:    CodeAccountNotFound,
		Message: message,
	}
}

// Database creates a new database error with the given message.
func Database(message string) *Error {
	return &Error{
		Code:    CodeDatabase,
		Message: message,
	}
}

// UnrecognizedRole creates a new unrecognized role error with the given message.
func UnrecognizedRole(message string) *Error {
	return &Error{
		Code:    CodeUnrecognizedRole,
		Message: message,
	}
}
