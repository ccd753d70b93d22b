package apiclient

import "fmt"

// AuthError means the request could not be authenticated: no token was
// available, or the server rejected the one we sent.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("apiclient: authentication failed: %s", e.Reason)
}

// TransportError wraps a network-level failure. The request never produced
// an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apiclient: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-2xx response from the server, carrying whatever
// message the server put in its error body.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("apiclient: server returned %d", e.StatusCode)
}

// ServiceUnavailable means the advisory backend is down or misconfigured.
// Callers should fall back to manual entry rather than surfacing this as a
// hard failure.
type ServiceUnavailable struct {
	Message string
}

func (e *ServiceUnavailable) Error() string {
	return fmt.Sprintf("apiclient: service unavailable: %s", e.Message)
}
