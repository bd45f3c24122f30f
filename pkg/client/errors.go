package client

import (
	"errors"
	"fmt"
	"net/http"
)

// fallbackMessage surfaces when a failed response carries no usable message.
const fallbackMessage = "Request failed"

// ValidationError is an HTTP 400 carrying a field-to-messages map. Forms use
// Details to attach each message to its input instead of showing one generic
// banner; the submission stays retryable.
type ValidationError struct {
	Message string
	Details map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fallbackMessage
}

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", fallbackMessage, e.Status)
}

// AsValidationError unwraps err into a ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// IsUnauthorized reports whether err is a 401 that survived the one-shot
// refresh path. Callers should treat it as "session over, re-authenticate".
func IsUnauthorized(err error) bool {
	var aerr *APIError
	return errors.As(err, &aerr) && aerr.Status == http.StatusUnauthorized
}
