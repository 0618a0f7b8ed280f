package aur

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrService indicates the RPC interface answered with an error envelope
	ErrService = errors.New("aurweb returned an error")
	// ErrInvalidSearchField indicates an unknown search-by field
	ErrInvalidSearchField = errors.New("invalid search field")
	// ErrEmptyQuery indicates a search without a query string
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrDecode indicates a response body that is not a valid RPC envelope
	ErrDecode = errors.New("failed to decode aurweb response")
)

// ServiceError carries the message of an error envelope
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %q", ErrService, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return ErrService
}

// HTTPError represents a non-200 response without an error envelope
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// isRetryable reports whether a request failing with err may succeed later.
// Transport failures, 429 and 5xx responses qualify.
func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return retryableStatus(httpErr.StatusCode)
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return retryableStatus(svcErr.StatusCode)
	}
	var tErr *transportError
	return errors.As(err, &tErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// transportError wraps failures below HTTP (DNS, dial, TLS, reset)
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}
