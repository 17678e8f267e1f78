package transport

import (
	"errors"
	"fmt"
)

// NoConnectivityError means the request failed and the connectivity probe
// could not reach the outside world either: the device is offline.
type NoConnectivityError struct {
	Err error
}

func (e *NoConnectivityError) Error() string {
	return "no internet connection: " + e.Err.Error()
}

func (e *NoConnectivityError) Unwrap() error { return e.Err }

// ServerUnreachableError means the request failed while general connectivity
// looks fine: the API server itself is down or unreachable.
type ServerUnreachableError struct {
	Err error
}

func (e *ServerUnreachableError) Error() string {
	return "server unreachable: " + e.Err.Error()
}

func (e *ServerUnreachableError) Unwrap() error { return e.Err }

// HTTPError is an HTTP-level rejection. Message carries the server-provided
// validation message for 422 responses and the status text otherwise; the
// original status and raw body stay accessible.
type HTTPError struct {
	Status     int
	StatusText string
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.StatusText, e.Message)
}

// IsStatus reports whether err carries an *HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}
