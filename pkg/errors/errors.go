// Package errors provides structured error types for objview.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the model, the walker and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by the layer that produces them:
//   - Model: DUPLICATE_*, UNKNOWN_*, INCOMPATIBLE_SLOTS. The rejected call is
//     a no-op and every graph invariant still holds.
//   - Walker: OBJECT_NOT_DEFINED, UNSUPPORTED, NO_MEMBER_FOUND. The walk is
//     aborted, nodes created before the failure stay in the graph.
//   - Input: INVALID_*.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateName, "node %q already exists", name)
//	if errors.Is(err, errors.ErrCodeDuplicateName) {
//	    // ask for another name
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidAddress, origErr, "read %#x", addr)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidName    Code = "INVALID_NAME"
	ErrCodeInvalidAddress Code = "INVALID_ADDRESS"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidImage   Code = "INVALID_IMAGE"

	// Graph model errors
	ErrCodeDuplicateName      Code = "DUPLICATE_NAME"
	ErrCodeDuplicateAttribute Code = "DUPLICATE_ATTRIBUTE"
	ErrCodeUnknownNode        Code = "UNKNOWN_NODE"
	ErrCodeUnknownAttribute   Code = "UNKNOWN_ATTRIBUTE"
	ErrCodeIncompatibleSlots  Code = "INCOMPATIBLE_SLOTS"

	// Object walk errors
	ErrCodeObjectNotDefined Code = "OBJECT_NOT_DEFINED"
	ErrCodeNoMemberFound    Code = "NO_MEMBER_FOUND"
	ErrCodeUnsupported      Code = "UNSUPPORTED"

	// Resource errors
	ErrCodeNotFound  Code = "NOT_FOUND"
	ErrCodeCancelled Code = "CANCELLED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error carrying the same code.
// This lets a coded error built at the call site match a package sentinel
// such as nodegraph.ErrDuplicateName via the standard errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
