// Package errors provides lightweight, composable error construction
// helpers shared across the query pipeline's components.
package errors

import (
	"fmt"
	"strings"
)

// OperationError describes a failed operation with optional component
// and resource context, in the style the rest of the pipeline expects
// from an error message: "failed to <op>, component: <c>, resource: <r>,
// cause: <err>".
type OperationError struct {
	Operation string
	Component string
	Resource  string
	Cause     error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to %s", e.Operation)
	if e.Component != "" {
		fmt.Fprintf(&b, ", component: %s", e.Component)
	}
	if e.Resource != "" {
		fmt.Fprintf(&b, ", resource: %s", e.Resource)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ", cause: %s", e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// FailedTo formats "failed to <action>", appending ": <cause>" when a
// cause is given. Unlike FailedToWithDetails this returns a plain error,
// not an *OperationError — use it for quick one-line wraps where the
// component/resource detail isn't available.
func FailedTo(action string, cause error) error {
	if cause == nil {
		return fmt.Errorf("failed to %s", action)
	}
	return fmt.Errorf("failed to %s: %w", action, cause)
}

// FailedToWithDetails builds a fully-populated OperationError.
func FailedToWithDetails(operation, component, resource string, cause error) error {
	return &OperationError{
		Operation: operation,
		Component: component,
		Resource:  resource,
		Cause:     cause,
	}
}

// Wrapf formats a message and wraps it around err using the standard
// "<message>: <err>" convention. Returns nil when err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// DatabaseError wraps a cause as a database-component operation failure.
func DatabaseError(operation string, cause error) error {
	return FailedToWithDetails(operation, "database", "", cause)
}

// NetworkError wraps a cause as a network-component operation failure
// against a specific endpoint.
func NetworkError(operation, endpoint string, cause error) error {
	return FailedToWithDetails(operation, "network", endpoint, cause)
}

// ValidationError reports a field-scoped validation failure.
func ValidationError(field, reason string) error {
	return fmt.Errorf("validation failed for field %s: %s", field, reason)
}

// ConfigurationError reports an invalid configuration setting.
func ConfigurationError(setting, reason string) error {
	return fmt.Errorf("configuration error for setting %s: %s", setting, reason)
}

// TimeoutError reports an operation that exceeded its deadline.
func TimeoutError(operation, after string) error {
	return fmt.Errorf("timeout while %s after %s", operation, after)
}

// AuthenticationError reports a failed authentication attempt.
func AuthenticationError(reason string) error {
	return fmt.Errorf("authentication failed: %s", reason)
}

// AuthorizationError reports an insufficient-permission failure for an
// action on a resource.
func AuthorizationError(action, resource string) error {
	return fmt.Errorf("authorization failed: insufficient permissions to %s %s", action, resource)
}

// ParseError reports a failure to parse a resource in a given format.
func ParseError(resource, format string, cause error) error {
	return FailedToWithDetails(fmt.Sprintf("parse %s as %s", resource, format), "parser", "", cause)
}

var transientSubstrings = []string{
	"timeout",
	"connection refused",
	"connection reset",
	"service unavailable",
	"temporarily unavailable",
	"too many requests",
	"i/o timeout",
	"eof",
}

// IsRetryable reports whether err looks like a transient failure worth
// retrying (network hiccups, timeouts, 5xx-shaped messages). It never
// inspects custom error types — it is a last-resort heuristic for
// errors that cross a process boundary as plain strings.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range transientSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// chainError joins multiple non-nil errors into a single message.
type chainError struct {
	errs []error
}

func (c *chainError) Error() string {
	if len(c.errs) == 1 {
		return c.errs[0].Error()
	}
	parts := make([]string, len(c.errs))
	for i, e := range c.errs {
		parts[i] = e.Error()
	}
	return "multiple errors: " + strings.Join(parts, "; ")
}

// Chain combines zero or more errors (nils are skipped) into one error.
// Returns nil if every argument is nil.
func Chain(errs ...error) error {
	var nonNil []error
	for _, e := range errs {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}
	return &chainError{errs: nonNil}
}
