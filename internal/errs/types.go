package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is a local input rejection raised before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthError reports a missing or rejected session token.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "auth: " + e.Reason + ": " + e.Err.Error()
	}
	return "auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnauthorized) match any AuthError.
func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// NetworkError is a transport failure where no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx HTTP response.
// Message holds the server's own explanation when it sent one.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Message
}

// Is maps well-known statuses onto sentinels.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// GenericMessage is what Message returns for errors outside the taxonomy.
const GenericMessage = "Something went wrong."

// Message returns the user-facing text for err: the server message when
// present, otherwise a generic description of the failure class. A rejected
// session always reads as a sign-in prompt.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		se *ServerError
		ne *NetworkError
		ae *AuthError
	)
	switch {
	case errors.As(err, &ve):
		if ve.Field == "" {
			return ve.Reason
		}
		return ve.Field + ": " + ve.Reason
	case errors.As(err, &ae):
		return "Please sign in again."
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("The server responded with HTTP %d.", se.Status)
	case errors.As(err, &ne):
		return "Could not reach the server. Check your connection and try again."
	case errors.Is(err, ErrInFlight):
		return "Please wait for the previous action to finish."
	case errors.Is(err, ErrUnsupported):
		return "This action is not supported by the server yet."
	case errors.Is(err, ErrRateLimited):
		return "Too many failed attempts. Try again later."
	case errors.Is(err, ErrStale):
		return "Saved, but the list could not be refreshed."
	case errors.Is(err, ErrNotFound):
		return "Item not found."
	}
	return GenericMessage
}
