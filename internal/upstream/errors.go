package upstream

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the upstream services can produce
// into a closed taxonomy. Each kind maps to one fixed user-facing string.
type ErrorKind int

const (
	// KindValidation is a local precondition failure, raised before any
	// network call is made.
	KindValidation ErrorKind = iota
	// KindNetwork means no response was received at all.
	KindNetwork
	// KindServer means a response was received with an error status or an
	// explicit error field.
	KindServer
	// KindMalformed means a 2xx response arrived without the expected
	// result/reply fields.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// APIError is the single failure shape surfaced by the upstream clients.
type APIError struct {
	Kind    ErrorKind
	Status  int    // HTTP status, KindServer only
	Message string // server-provided or validation message
	cause   error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindServer:
		return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
	case KindNetwork:
		return fmt.Sprintf("upstream unreachable: %v", e.cause)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// UserMessage maps the error into its fixed user-facing string. Server
// errors surface the server-provided message when present.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindValidation:
		return e.Message
	case KindNetwork:
		return "Unable to reach the server. Please check your connection."
	case KindMalformed:
		return "Received an invalid response from the server"
	case KindServer:
		msg := e.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return fmt.Sprintf("Error: %d - %s", e.Status, msg)
	default:
		return "Sorry, something went wrong."
	}
}

// NewValidationError builds a local precondition failure.
func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

func newNetworkError(cause error) *APIError {
	return &APIError{Kind: KindNetwork, Message: "no response received", cause: cause}
}

func newServerError(status int, message string) *APIError {
	return &APIError{Kind: KindServer, Status: status, Message: message}
}

func newMalformedError(message string) *APIError {
	return &APIError{Kind: KindMalformed, Message: message}
}

// Classify coerces an arbitrary error into the taxonomy. Errors that did
// not originate here are treated as transport-level failures.
func Classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newNetworkError(err)
}
