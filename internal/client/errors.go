package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is any 404 from the backend.
	ErrNotFound = errors.New("not found")
	// ErrGeneric is any other non-2xx status, a transport failure or an
	// unreadable body.
	ErrGeneric = errors.New("backend request failed")
)

// Kind is the discriminant of a backend call result.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	default:
		return "generic"
	}
}

// StatusError describes a failed backend call. StatusCode is zero when the
// request never produced a response.
type StatusError struct {
	Op         string
	StatusCode int
	kind       error
	cause      error
}

func (e *StatusError) Error() string {
	switch {
	case e.StatusCode != 0 && e.cause != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.kind)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.kind, e.cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.kind)
	}
}

func (e *StatusError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// NewStatusError builds the error for a failed call; code 404 maps to ErrNotFound,
// anything else to ErrGeneric.
func NewStatusError(op string, code int, cause error) *StatusError {
	kind := ErrGeneric
	if code == http.StatusNotFound {
		kind = ErrNotFound
	}
	return &StatusError{Op: op, StatusCode: code, kind: kind, cause: cause}
}

// Classify reduces any error returned by Client to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindGeneric
	}
}

// StatusCode returns the HTTP status behind err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Error routes of the client shell.
const (
	RouteError         = "/error"
	RouteErrorNotFound = "/error/404"
)

// ErrorRoute returns where the shell sends the browser after err.
// A nil error has no route.
func ErrorRoute(err error) string {
	switch Classify(err) {
	case KindOK:
		return ""
	case KindNotFound:
		return RouteErrorNotFound
	default:
		return RouteError
	}
}
