package dashboard

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrProductNotFound matches a 404 from the product service.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidCredentials is returned when the auth probe rejects the configured credentials.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNoSelection is returned by actions that need an active row when nothing is selected.
var ErrNoSelection = errors.New("no product selected")

// ValidationError is raised before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError means the request could not complete: transport failure,
// timeout, open circuit breaker or an undecodable response body.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response from the product service.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server responded %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: server responded %d: %s", e.Op, e.StatusCode, e.Message)
}

// Is lets callers match a 404 against ErrProductNotFound and a 401 against ErrInvalidCredentials.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrProductNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrInvalidCredentials:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
