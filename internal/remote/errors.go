package remote

import (
	"errors"
	"fmt"
)

// AuthError indicates that the service rejected the session. It is
// returned for 401 and 403 responses.
type AuthError struct {
	Path    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Path, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.Code, e.Method, e.Path, e.Body)
}

// ErrMismatchedResults is returned when an AI batch response does not
// line up positionally with its request.
var ErrMismatchedResults = errors.New("result count does not match request")
