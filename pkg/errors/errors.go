// Package errors provides structured error types for the genealogy tool.
//
// Errors carry a machine-readable [Code] so that the CLI, the HTTP API and
// library callers can tell structural misuse of the layout engine apart from
// bad input data.
//
// # Error Codes
//
// Caller-contract violations raised by the layout engine:
//   - EMPTY_HISTORY: at least one epoch was required but the history is empty
//   - INVALID_EPOCH: an epoch index outside [0, epochCount) was requested
//   - LAYOUT_NOT_COMPUTED: curves were requested before positions existed
//
// Input errors raised by loaders and front ends:
//   - INVALID_*: validation failures
//   - DUPLICATE_ID: a child id appears twice in one history
//   - FILE_NOT_FOUND, INTERNAL_ERROR
//
// A child whose parent cannot be found is not an error at all; the engine
// simply draws no lineage curve for it.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidEpoch, "epoch %d out of range [0, %d)", e, n)
//	if errors.Is(err, errors.ErrCodeInvalidEpoch) {
//	    // caller bug
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout engine contract violations
	ErrCodeEmptyHistory      Code = "EMPTY_HISTORY"
	ErrCodeInvalidEpoch      Code = "INVALID_EPOCH"
	ErrCodeLayoutNotComputed Code = "LAYOUT_NOT_COMPUTED"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidHistory Code = "INVALID_HISTORY"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeDuplicateID    Code = "DUPLICATE_ID"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
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

// IsContractViolation reports whether err signals that the layout stages were
// invoked out of order or with impossible arguments.
func IsContractViolation(err error) bool {
	switch GetCode(err) {
	case ErrCodeEmptyHistory, ErrCodeInvalidEpoch, ErrCodeLayoutNotComputed:
		return true
	}
	return false
}

// IsInputError reports whether err was caused by bad user-supplied data.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidHistory,
		ErrCodeInvalidConfig, ErrCodeInvalidPath, ErrCodeDuplicateID, ErrCodeEmptyHistory:
		return true
	}
	return false
}
