package errs

import (
	"errors"
	"net/http"
	"strings"

	"github.com/postboard/postboard-be/internal/database"
)

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
func NewBadRequestError(message string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewInternalServerError creates a 500 with the generic status text; store
// details stay in the logs.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// DecodeError is the 400 for a body that is not a single JSON object of the
// expected shape. The decoder's message is logged, not returned.
func DecodeError() *HTTPError {
	return NewBadRequestError("Invalid request body")
}

// FromDatabase maps a data access error for the named resource (e.g.
// "User") onto the HTTP error returned to the client.
func FromDatabase(err error, resource string) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, database.ErrInvalidID):
		return NewBadRequestError("Invalid " + strings.ToLower(resource) + " id")
	case errors.Is(err, database.ErrNotFound):
		return NewNotFoundError(resource + " not found")
	default:
		return NewInternalServerError()
	}
}
