// Package apperrors defines the structured error types of the module:
// configuration and validation failures, calibration failures carrying
// their cause, and the PreconditionError panic value raised by the limb
// kernels.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Types that carry a cause implement Unwrap() to support errors.Is() and errors.As().
package apperrors
