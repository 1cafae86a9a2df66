package market

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for use with errors.Is(). Every typed backend operation
// either succeeds or fails with an error matching exactly one of these.
var (
	// ErrNetwork is a transport failure or timeout. Retryable.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is an HTTP 401. The session has been invalidated and
	// the caller must re-login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is a rejected login (401/422 on the login endpoint).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is a 422 or other 4xx with field errors, or a client-side
	// input check that failed before any request was sent.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is an HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientPoints is a merchandise claim rejected because the
	// actor's loyalty points do not cover the cost.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrOutOfStock is a merchandise claim rejected because no stock is left.
	ErrOutOfStock = errors.New("out of stock")

	// ErrServer is a 5xx or a response whose shape could not be understood.
	// Retryable with backoff for idempotent requests.
	ErrServer = errors.New("server error")
)

// Client-side guards on destructive actions. These never reach the network.
var (
	// ErrNotConfirmed is returned when a destructive action was not confirmed.
	ErrNotConfirmed = errors.New("action not confirmed")

	// ErrActionDisabled is returned when an action is no longer allowed, such
	// as completing a delivery task that is already in a terminal status.
	ErrActionDisabled = errors.New("action disabled")
)

// Error carries the details of a failed backend call.
type Error struct {
	// Kind is one of the taxonomy sentinels above.
	Kind error
	// Area is the backend area that produced the error (e.g. "kurir").
	Area string
	// Status is the HTTP status code, 0 for transport failures.
	Status int
	// Message is the backend's human-readable message, if any.
	Message string
	// Code is the backend's machine-readable error code, if any.
	Code string
	// Fields are per-field validation messages from a 422 body.
	Fields map[string][]string
	// Points is the actor's current point balance when the backend reports
	// it on a claim rejection. Nil when absent.
	Points *int
	// Stock is the merchandise's current stock when the backend reports it
	// on a claim rejection. Nil when absent.
	Stock *int
	// Err is the underlying cause.
	Err error
}

// Error returns a human-readable description of the failure.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Area != "" {
		b.WriteString(e.Area)
		b.WriteString(": ")
	}
	b.WriteString(e.kindText())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, " [fields: %s]", strings.Join(names, ", "))
	}
	return b.String()
}

func (e *Error) kindText() string {
	if e.Kind == nil {
		return "error"
	}
	return e.Kind.Error()
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether err may succeed when re-issued unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}

// Validationf builds a client-side validation error for a single field.
func Validationf(field, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    ErrValidation,
		Message: msg,
		Fields:  map[string][]string{field: {msg}},
	}
}
