package models

import "errors"

// ErrorKind is the closed taxonomy of errors classified by the resilience
// and client layers (spec §7). Every cross-component call that can fail
// returns one of these via an ErrorRecord or a wrapped Go error — never a
// panic.
type ErrorKind string

const (
	ErrorKindInvalidRequest     ErrorKind = "InvalidRequest"
	ErrorKindAuthenticationFail ErrorKind = "AuthenticationFailed"
	ErrorKindNotFound           ErrorKind = "NotFound"
	ErrorKindRateLimited        ErrorKind = "RateLimited"
	ErrorKindTransientFailure   ErrorKind = "TransientFailure"
	ErrorKindTimeout            ErrorKind = "Timeout"
	ErrorKindCircuitOpen        ErrorKind = "CircuitOpen"
	ErrorKindCancelled          ErrorKind = "Cancelled"
	ErrorKindInternalError      ErrorKind = "InternalError"
)

// Retryable reports whether the resilience layer's retry policy should
// attempt this kind again (spec §4.2/§7). CircuitOpen, InvalidRequest,
// AuthenticationFailed, NotFound and Cancelled are never retried.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorKindTransientFailure, ErrorKindTimeout, ErrorKindRateLimited:
		return true
	default:
		return false
	}
}

// FallbackEligible reports whether the executor may walk the endpoint's
// fallback list after this failure (spec §4.6).
func (k ErrorKind) FallbackEligible() bool {
	switch k {
	case ErrorKindTimeout, ErrorKindCircuitOpen, ErrorKindTransientFailure:
		return true
	default:
		return false
	}
}

// ErrNotFound is a sentinel used by registries and repositories for
// missing-key lookups (distinct from ErrorKindNotFound, which classifies an
// external API response).
var ErrNotFound = errors.New("not found")

// ClassifiedError pairs a Go error with its ErrorKind classification. It is
// what APIClient.Invoke returns on failure, and what populates
// ErrorRecord.Kind.
type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind)
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// NewClassifiedError builds a ClassifiedError, defaulting Message to
// cause.Error() when cause is non-nil and message is empty.
func NewClassifiedError(kind ErrorKind, message string, cause error) *ClassifiedError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ClassifiedError{Kind: kind, Message: message, Cause: cause}
}

// ErrorRecord is a sanitized, user-facing error entry attached to a
// StageResult or Traceability detail. It never carries secrets (spec §3
// security invariant) — see pkg/sanitize.
type ErrorRecord struct {
	EndpointID string    `json:"endpoint_id,omitempty"`
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
}
