package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific caller-input validation failure.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced character is absent from the master sequence.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidPosition indicates an ordering invariant between new and review positions is violated.
	ErrCodeInvalidPosition ErrorCode = "INVALID_POSITION"
	// ErrCodeMissingInput indicates a required input was omitted.
	ErrCodeMissingInput ErrorCode = "MISSING_INPUT"
	// ErrCodeInsufficientData indicates the master sequence cannot supply enough review characters.
	ErrCodeInsufficientData ErrorCode = "INSUFFICIENT_DATA"
	// ErrCodeDuplicate indicates the character is already part of the master sequence.
	ErrCodeDuplicate ErrorCode = "DUPLICATE"
	// ErrCodeInvalidCharacter indicates the character is not a Chinese ideograph.
	ErrCodeInvalidCharacter ErrorCode = "INVALID_CHARACTER"
	// ErrCodeLength indicates more or fewer than one character was supplied.
	ErrCodeLength ErrorCode = "LENGTH"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is a structured validation error. Message is meant to be shown to the user verbatim.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *Error) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors, one per code.

// NotFound creates a not found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidPosition creates an invalid position error.
func InvalidPosition(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidPosition, Message: fmt.Sprintf(format, args...)}
}

// MissingInput creates a missing input error.
func MissingInput(msg string) *Error {
	return &Error{Code: ErrCodeMissingInput, Message: msg}
}

// InsufficientData creates an insufficient data error.
func InsufficientData(msg string) *Error {
	return &Error{Code: ErrCodeInsufficientData, Message: msg}
}

// Duplicate creates a duplicate error.
func Duplicate(format string, args ...any) *Error {
	return &Error{Code: ErrCodeDuplicate, Message: fmt.Sprintf(format, args...)}
}

// InvalidCharacter creates an invalid character error.
func InvalidCharacter(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidCharacter, Message: fmt.Sprintf(format, args...)}
}

// Length creates a length error.
func Length(format string, args ...any) *Error {
	return &Error{Code: ErrCodeLength, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode checks if an error, or anything it wraps, is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an *Error.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if e, ok := As(err); ok {
		return e.Code
	}
	return defaultCode
}
