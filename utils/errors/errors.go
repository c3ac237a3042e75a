package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// Details holds the internal cause. It is logged, never sent to clients.
	Details string `json:"-"`

	cause error
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any APIError carrying the same code, so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput       = NewAPIError("INVALID_INPUT", "Invalid inputs passed, please check your data", http.StatusUnprocessableEntity)
	ErrNotFound           = NewAPIError("NOT_FOUND", "Could not find a place for the provided id", http.StatusNotFound)
	ErrOwnerNotFound      = NewAPIError("OWNER_NOT_FOUND", "Could not find user for the provided id", http.StatusNotFound)
	ErrForbidden          = NewAPIError("FORBIDDEN", "You are not allowed to modify this place", http.StatusForbidden)
	ErrDuplicateEmail     = NewAPIError("DUPLICATE_EMAIL", "User already exists, please login instead", http.StatusUnprocessableEntity)
	ErrInvalidCredentials = NewAPIError("INVALID_CREDENTIALS", "Invalid credentials, could not log you in", http.StatusUnauthorized)
	ErrUnauthenticated    = NewAPIError("UNAUTHENTICATED", "Authentication failed", http.StatusUnauthorized)
	ErrGeocodeFailure     = NewAPIError("GEOCODE_FAILURE", "Could not find location for the specified address", http.StatusInternalServerError)
	ErrHashingFailure     = NewAPIError("HASHING_FAILURE", "Could not process credentials, please try again later", http.StatusInternalServerError)
	ErrPersistenceFailure = NewAPIError("PERSISTENCE_FAILURE", "Operation failed, please try again later", http.StatusInternalServerError)
	ErrRouteNotFound      = NewAPIError("ROUTE_NOT_FOUND", "Could not find this route", http.StatusNotFound)
	ErrInternal           = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// Wrap returns a copy of kind that records err as its hidden cause. An err
// that already is an APIError is returned unchanged.
func Wrap(err error, kind *APIError) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	wrapped := *kind
	if err != nil {
		wrapped.Details = err.Error()
		wrapped.cause = err
	}
	return &wrapped
}

// WithStatus returns a copy of e answered with a different HTTP status.
func (e *APIError) WithStatus(status int) *APIError {
	c := *e
	c.Status = status
	return &c
}

// WithMessage returns a copy of e with a different public message.
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

// Is and As forward to the standard library so callers importing this
// package as "errors" keep the usual helpers.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
