// Package errors provides structured error types for OpenBoard.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The board-specific codes map onto how an operation reacts to them:
//   - CONFIGURATION_ERROR: fatal, raised before anything is mutated
//   - PARSE_ERROR: one descriptor line is skipped, parsing continues
//   - CORRUPT_BOARD: a descriptor with no usable cells, fatal for any batch
//   - PLACEMENT_SKIPPED: one image is counted as failed, the batch continues
//   - EXTENSION_FAILURE: the remaining batch is aborted, placed images are kept
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "invalid board name: %q", name)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExtensionFailure, origErr, "rewrite %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Board lifecycle errors
	ErrCodeConfiguration    Code = "CONFIGURATION_ERROR"
	ErrCodeParse            Code = "PARSE_ERROR"
	ErrCodeCorruptBoard     Code = "CORRUPT_BOARD"
	ErrCodePlacementSkipped Code = "PLACEMENT_SKIPPED"
	ErrCodeExtensionFailure Code = "EXTENSION_FAILURE"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCellType   Code = "INVALID_CELL_TYPE"
	ErrCodeInvalidResizeMode Code = "INVALID_RESIZE_MODE"
	ErrCodeInvalidDirection  Code = "INVALID_DIRECTION"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeLayerNotFound Code = "LAYER_NOT_FOUND"

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

// IsBatchFatal reports whether err must stop a batch import rather than
// being counted against a single image.
func IsBatchFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeCorruptBoard, ErrCodeExtensionFailure, ErrCodeConfiguration:
		return true
	}
	return false
}

// LineError describes a descriptor line that could not be parsed.
type LineError struct {
	Line   int    // 1-based line number
	Text   string // Raw line content
	Reason string
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Code returns the error code for this error type.
func (e *LineError) Code() Code {
	return ErrCodeParse
}
