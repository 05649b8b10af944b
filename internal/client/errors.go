// ABOUTME: Error taxonomy returned by the API client
// ABOUTME: Separates transport, authorization, validation, and unexpected backend failures

package client

import (
	"errors"
	"fmt"
)

// TransportError means the backend could not be reached (network, timeout, cancel)
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthorizationError is a 401 response. The dispatcher has already cleared the
// stored credential and emitted Unauthorized by the time a caller sees it.
type AuthorizationError struct {
	Path    string
	Message string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: session expired or invalid credentials"
}

// ValidationError is a 4xx response (or a request rejected before sending).
// Message is shown to the user verbatim.
type ValidationError struct {
	Status  int // 0 when the request was rejected client-side
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return e.Message
}

// UnexpectedError is a 5xx response or a malformed body
type UnexpectedError struct {
	Status  int
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Message != "":
		return fmt.Sprintf("backend error: %s", e.Message)
	default:
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is (or wraps) an AuthorizationError
func IsUnauthorized(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

// BackendMessage returns the message carried in the backend's error payload, if any
func BackendMessage(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var unexpErr *UnexpectedError
	if errors.As(err, &unexpErr) {
		return unexpErr.Message
	}
	return ""
}

// UserMessage derives the text to show for err: the backend's message when
// present, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if msg := BackendMessage(err); msg != "" {
		return msg
	}
	return fallback
}
