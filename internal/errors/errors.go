package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Process exit codes returned by cmd/generate-golden.
const (
	ExitSuccess      = 0 // Indicates successful execution.
	ExitErrorGeneric = 1 // Indicates a generic error.
	ExitErrorConfig  = 4 // Indicates a configuration error.
)

// ConfigError represents an invalid configuration value, such as a threshold
// assignment that breaks the ordering the dispatcher relies on.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalibrationError records a failed threshold calibration step while
// preserving the underlying cause.
type CalibrationError struct {
	// Stage names the threshold being calibrated ("basecase", "dc", ...).
	Stage string
	// Cause is the underlying error.
	Cause error
}

// Error returns the stage and the message of the underlying cause.
func (e CalibrationError) Error() string {
	return fmt.Sprintf("calibration of %s threshold failed: %v", e.Stage, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
//
// Returns:
//   - error: The underlying cause of the CalibrationError.
func (e CalibrationError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation that exceeded its time budget.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// PreconditionError is the panic value raised by the limb kernels when a
// caller breaks a length, size or aliasing precondition. Kernels never
// return it as an error: a violation is a programming bug in the caller.
type PreconditionError struct {
	// Op is the kernel entry point that detected the violation.
	Op string
	// Message describes the violated precondition.
	Message string
}

// Error returns a formatted message describing the violation.
func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition violated: %s", e.Op, e.Message)
}

// Require panics with a PreconditionError when cond is false. The message
// is only formatted on failure.
//
// Parameters:
//   - cond: The precondition that must hold.
//   - op: The name of the calling kernel.
//   - format: A format string for the violation message.
//   - args: Arguments for the format string.
func Require(cond bool, op, format string, args ...any) {
	if !cond {
		panic(PreconditionError{Op: op, Message: fmt.Sprintf(format, args...)})
	}
}

// AsPrecondition reports whether a recovered panic value is a
// PreconditionError and returns it.
func AsPrecondition(r any) (PreconditionError, bool) {
	if err, ok := r.(error); ok {
		var pe PreconditionError
		if errors.As(err, &pe) {
			return pe, true
		}
	}
	return PreconditionError{}, false
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: true if the error is a context error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
