// Package errors provides structured error types for autorider.
//
// Every failure that aborts a run carries a machine-readable [Code] so the CLI
// can tell configuration mistakes apart from broken archives or failed
// subprocesses.
//
// # Error Codes
//
//   - INVALID_*: malformed input (config, manifests, binaries, lockfiles)
//   - UNSUPPORTED_ARCHIVE: a path no archive reader understands
//   - IO_ERROR: unreadable files and archives
//   - SUBPROCESS_FAILED: fetch or lookup commands exiting non-zero
//   - INTERNAL_ERROR: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "build-system.requires is not a list of strings")
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "open %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidBinary   Code = "INVALID_BINARY"
	ErrCodeInvalidLock     Code = "INVALID_LOCK"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"

	// Archive and filesystem errors
	ErrCodeUnsupportedArchive Code = "UNSUPPORTED_ARCHIVE"
	ErrCodeIO                 Code = "IO_ERROR"
	ErrCodeFileNotFound       Code = "FILE_NOT_FOUND"

	// External command errors
	ErrCodeSubprocess Code = "SUBPROCESS_FAILED"

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
