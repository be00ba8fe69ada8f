package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a resilient call ultimately failed. Only the final
// attempt's failure is classified; earlier attempts are retried identically
// regardless of kind.
type Kind string

const (
	// KindTimeout means the last attempt exceeded its per-attempt deadline.
	KindTimeout Kind = "timeout"
	// KindOffline means local network connectivity is reportedly down.
	KindOffline Kind = "offline"
	// KindHTTPStatus means the server answered outside the 2xx/3xx range.
	KindHTTPStatus Kind = "http_status"
	// KindDecode means the transport succeeded but the body failed to decode.
	KindDecode Kind = "decode"
	// KindConnection covers every other transport-level failure.
	KindConnection Kind = "connection"
)

// Error is the terminal failure returned once the attempt budget is
// exhausted. It wraps the last attempt's cause.
type Error struct {
	Kind       Kind
	StatusCode int
	Status     string
	Attempts   int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus && e.Status != "" {
		return fmt.Sprintf("fetch: %s %q after %d attempt(s): %s", e.Kind, e.URL, e.Attempts, e.Status)
	}
	return fmt.Sprintf("fetch: %s %q after %d attempt(s): %v", e.Kind, e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// statusError marks an attempt that reached the server but came back outside
// the success range.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "unexpected status " + e.status
}

// decodeError marks an attempt whose body could not be decoded despite a
// successful transport status.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decode response: " + e.err.Error()
}

func (e *decodeError) Unwrap() error { return e.err }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// userMessage is the one-line notification shown when a call gives up.
func userMessage(kind Kind) string {
	switch kind {
	case KindTimeout:
		return "The request timed out. Please try again."
	case KindOffline:
		return "You appear to be offline. Check your connection and try again."
	case KindHTTPStatus:
		return "The server could not complete the request. Please try again later."
	case KindDecode:
		return "The server sent an unexpected response. Please try again later."
	default:
		return "Could not reach the server. Please try again later."
	}
}
