package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport is matched by every failure returned from Client.
var ErrTransport = errors.New("transport failed")

// Error describes a failed collaborator call: a network failure (Err set), a
// non-2xx status, or an unusable response body.
type Error struct {
	Endpoint   string
	StatusCode int    // Zero when no response was received.
	Message    string // Server-provided error text, if any.
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: POST %s", ErrTransport, e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// Reason returns the most specific human-readable cause: the server's
// message, the HTTP status text, or the underlying error.
func (e *Error) Reason() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return ErrTransport.Error()
	}
}

// Reason extracts a human-readable cause from any error returned by Client.
func Reason(err error) string {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Reason()
	}
	return err.Error()
}
