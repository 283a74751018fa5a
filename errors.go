package vcr

import (
	"errors"
	"fmt"
)

// UnhandledRequestError is returned when a cassette must serve a
// recorded response for a request but no unplayed exchange matches.
//
// Because the error is returned from the transport, it may be wrapped.
type UnhandledRequestError struct {
	// Path of the cassette that was asked.
	Path string

	// Request that had no matching recorded response.
	Request *Request
}

// Error implements the error interface.
func (e UnhandledRequestError) Error() string {
	if e.Request == nil {
		return fmt.Sprintf("cassette %q does not contain a matching recorded response", e.Path)
	}
	return fmt.Sprintf("cassette %q does not contain a recorded response for %s %s", e.Path, e.Request.Method, e.Request.URI)
}

// UnknownMatcherError is returned when a match_on configuration names a
// comparator that is not registered. It is raised when the configuration
// is resolved, never during matching.
type UnknownMatcherError struct {
	Name string
}

// Error implements the error interface.
func (e UnknownMatcherError) Error() string {
	return fmt.Sprintf("unknown request matcher %q", e.Name)
}

// ErrCassetteOpen is returned when Enter is called on a context
// decorator that is already open. It signals a caller bug, not a data
// problem: each scope needs its own decorator (Run and Wrap clone
// automatically).
var ErrCassetteOpen = errors.New("vcr: cassette already open")
