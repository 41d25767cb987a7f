// Package errors defines the pipeline's user-facing error taxonomy: a
// typed AppError with an HTTP status mapping, used at the orchestrator
// boundary so a hosting service gets a stable, safe-to-expose failure
// shape instead of raw internal error text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType is one of the pipeline's fatal/non-fatal error kinds.
type ErrorType string

const (
	ErrorTypeInputInvalid            ErrorType = "input_invalid"
	ErrorTypeExtractionDegraded      ErrorType = "extraction_degraded"
	ErrorTypeProviderBusy            ErrorType = "provider_busy"
	ErrorTypeAllProvidersUnavailable ErrorType = "all_providers_unavailable"
	ErrorTypeEmbeddingUnavailable    ErrorType = "embedding_unavailable"
	ErrorTypeSearchUnavailable       ErrorType = "search_unavailable"
	ErrorTypeTimeout                 ErrorType = "timeout"
	ErrorTypeInternal                ErrorType = "internal"
)

var statusCodes = map[ErrorType]int{
	ErrorTypeInputInvalid:            http.StatusBadRequest,
	ErrorTypeExtractionDegraded:      http.StatusOK,
	ErrorTypeProviderBusy:            http.StatusServiceUnavailable,
	ErrorTypeAllProvidersUnavailable: http.StatusServiceUnavailable,
	ErrorTypeEmbeddingUnavailable:    http.StatusOK,
	ErrorTypeSearchUnavailable:       http.StatusServiceUnavailable,
	ErrorTypeTimeout:                 http.StatusGatewayTimeout,
	ErrorTypeInternal:                http.StatusInternalServerError,
}

// AppError is the structured error the orchestrator boundary returns.
// Only SearchUnavailable, Internal, and a hard Timeout are meant to
// reach this type as a fatal failure; the other kinds are normally
// folded into response metadata instead (see ExtractionDegraded /
// EmbeddingUnavailable / ProviderBusy handling in the pipeline).
type AppError struct {
	Type       ErrorType
	Message    string
	Details    string
	StatusCode int
	Cause      error
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Type, e.Message)
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	return b.String()
}

// Unwrap exposes Cause for errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a literal details string, in place, and returns
// the same error for chaining.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithDetailsf attaches a formatted details string.
func (e *AppError) WithDetailsf(format string, args ...interface{}) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// New builds an AppError with the status code implied by errType.
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCodes[errType],
	}
}

// Wrap builds an AppError around cause.
func Wrap(cause error, errType ErrorType, message string) *AppError {
	err := New(errType, message)
	err.Cause = cause
	return err
}

// Wrapf builds an AppError around cause with a formatted message.
func Wrapf(cause error, errType ErrorType, format string, args ...interface{}) *AppError {
	return Wrap(cause, errType, fmt.Sprintf(format, args...))
}

// NewInputInvalidError builds an ErrorTypeInputInvalid error.
func NewInputInvalidError(message string) *AppError {
	return New(ErrorTypeInputInvalid, message)
}

// NewSearchUnavailableError wraps a member-store failure.
func NewSearchUnavailableError(operation string, cause error) *AppError {
	return Wrapf(cause, ErrorTypeSearchUnavailable, "member store operation failed: %s", operation)
}

// NewAllProvidersUnavailableError reports that every LLM provider's
// circuit is open or has exhausted its retries.
func NewAllProvidersUnavailableError() *AppError {
	return New(ErrorTypeAllProvidersUnavailable, "no LLM provider is currently available")
}

// NewTimeoutError reports an operation that exceeded its deadline.
func NewTimeoutError(operation string) *AppError {
	return New(ErrorTypeTimeout, fmt.Sprintf("operation timed out: %s", operation))
}

// IsType reports whether err is an *AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// GetType returns err's ErrorType, or ErrorTypeInternal for a plain error.
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// GetStatusCode returns err's HTTP status code, or 500 for a plain error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// safeMessages holds the fixed, user-facing strings for error kinds
// whose internal message must never be exposed verbatim.
var safeMessages = struct {
	AllProvidersUnavailable string
	SearchUnavailable       string
	OperationTimeout        string
	InternalError           string
}{
	AllProvidersUnavailable: "The assistant is temporarily unavailable. Please try again shortly.",
	SearchUnavailable:       "The member directory is temporarily unavailable. Please try again shortly.",
	OperationTimeout:        "The request took too long to complete. Please try again.",
	InternalError:           "An internal error occurred",
}

// ErrorMessages exposes the fixed, user-facing strings used by
// SafeErrorMessage, so callers building their own response bodies can
// reuse the same wording.
var ErrorMessages = safeMessages

// SafeErrorMessage returns a message safe to show a user: AppError
// input-validation messages are passed through verbatim (they already
// describe the problem without leaking internals); every other kind
// returns a fixed, generic string.
func SafeErrorMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "An unexpected error occurred"
	}

	switch appErr.Type {
	case ErrorTypeInputInvalid:
		return appErr.Message
	case ErrorTypeAllProvidersUnavailable:
		return ErrorMessages.AllProvidersUnavailable
	case ErrorTypeSearchUnavailable:
		return ErrorMessages.SearchUnavailable
	case ErrorTypeTimeout:
		return ErrorMessages.OperationTimeout
	default:
		return ErrorMessages.InternalError
	}
}

// LogFields builds a structured field map suitable for
// logrus.WithFields, describing err for a log line.
func LogFields(err error) map[string]interface{} {
	fields := map[string]interface{}{
		"error": err.Error(),
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fields
	}

	fields["error_type"] = string(appErr.Type)
	fields["status_code"] = appErr.StatusCode
	if appErr.Details != "" {
		fields["error_details"] = appErr.Details
	}
	if appErr.Cause != nil {
		fields["underlying_error"] = appErr.Cause.Error()
	}
	return fields
}

// chainError joins multiple non-nil errors with an arrow separator,
// distinct from pkg/shared/errors.Chain's semicolon join: this variant
// reads as a causal sequence (first -> second -> third) rather than an
// unordered list, matching how AppError chains are usually built up
// through a call stack.
type chainError struct {
	errs []error
}

func (c *chainError) Error() string {
	parts := make([]string, len(c.errs))
	for i, e := range c.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, " -> ")
}

// Chain combines zero or more errors (nils are skipped) into one error.
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
