package client

import (
	"context"
	"errors"
	"fmt"
)

// ConnectivityError means the request never got a response: DNS failure,
// refused connection, timeout before headers.
type ConnectivityError struct {
	BaseURL string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("could not reach stock service at %s: %v", e.BaseURL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// TransportError is a non-2xx response. Body holds the raw response text.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stock service returned status %d", e.Status)
	}
	return fmt.Sprintf("stock service returned status %d: %s", e.Status, e.Body)
}

// MalformedResponseError is a 2xx response that cannot be read under the
// requested representation.
type MalformedResponseError struct {
	ContentType string
	Err         error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (content-type %q): %v", e.ContentType, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Message converts a retrieval error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var connErr *ConnectivityError
	var transErr *TransportError
	var malErr *MalformedResponseError

	switch {
	case errors.As(err, &connErr):
		return "Could not reach the stock service. Check that it is running and try again."
	case errors.As(err, &transErr):
		return transErr.Error()
	case errors.As(err, &malErr):
		return "Unexpected response from the stock service: " + malErr.Err.Error()
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	default:
		return err.Error()
	}
}

// Retryable reports whether retrying the same request may succeed.
// Only connectivity failures qualify; the service answered every other kind.
func Retryable(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}
