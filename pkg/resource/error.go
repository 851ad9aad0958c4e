package resource

import (
	"errors"
	"fmt"
	"net/http"
)

// Synthetic status codes for failures that did not come from an HTTP
// response.
const (
	// StatusTransport marks a retrieval that never produced a status,
	// e.g. a refused connection or an unreadable file.
	StatusTransport = 0
	// StatusNotFound marks a missing resource.
	StatusNotFound = http.StatusNotFound
	// StatusParse marks a payload that was retrieved but could not be decoded.
	StatusParse = http.StatusUnprocessableEntity
)

// Error is the single failure type produced by the resource layer. It names
// the resource and the status so callers can surface both to the user.
type Error struct {
	Resource string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: status %d", e.Resource, e.Status)
	}
	return fmt.Sprintf("load %s: status %d: %v", e.Resource, e.Status, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool {
	re, ok := AsError(err)
	return ok && re.Status == StatusNotFound
}
