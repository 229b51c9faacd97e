// Package errors provides structured error types for medianshift.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the core packages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code names one failure kind of the optimization engine:
//   - GRAPH_LOAD: malformed vertex or edge files
//   - INVALID_GRAPH: structurally invalid graph (bad endpoint, negative cost)
//   - INFEASIBLE_GRAPH: p out of range or too many disconnected components
//   - ELONGATION_DOMAIN: k at or beyond the elongation upper limit
//   - SOLVER: the optimization backend failed for a specific k
//   - INVALID_INPUT, INVALID_CONFIG: command-line and configuration errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInfeasibleGraph, "p=%d exceeds %d vertices", p, n)
//	if errors.Is(err, errors.ErrCodeInfeasibleGraph) {
//	    // Handle infeasible request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeGraphLoad, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeGraphLoad     Code = "GRAPH_LOAD"
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Model errors
	ErrCodeInfeasibleGraph  Code = "INFEASIBLE_GRAPH"
	ErrCodeElongationDomain Code = "ELONGATION_DOMAIN"
	ErrCodeSolver           Code = "SOLVER"

	// Infrastructure errors
	ErrCodeCache    Code = "CACHE"
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
// Only the outermost *Error is inspected, so wrapping an error with a new
// code re-classifies it.
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// Process exit codes used by the command surface.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitInfeasible = 3
	ExitSolver     = 4
)

// ExitCode maps an error to a process exit code.
// Input and configuration errors exit with ExitUsage, infeasible requests
// with ExitInfeasible, and solver failures with ExitSolver.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeGraphLoad, ErrCodeInvalidGraph:
		return ExitUsage
	case ErrCodeInfeasibleGraph, ErrCodeElongationDomain:
		return ExitInfeasible
	case ErrCodeSolver:
		return ExitSolver
	default:
		return ExitFailure
	}
}
