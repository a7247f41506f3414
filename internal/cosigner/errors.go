package cosigner

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when an attempt's wall-clock budget expires before
// a response arrives. A timed-out attempt is retried while the retry budget
// lasts; this error surfaces only once the budget is exhausted.
var ErrTimeout = errors.New("request timed out")

// ErrMalformedResponse is returned for a 2xx response whose body does not
// decode into the expected shape. Terminal: retrying will not fix a server
// speaking a different protocol.
var ErrMalformedResponse = errors.New("malformed server response")

// NetworkError wraps a transport-level failure (connection refused, reset,
// DNS). These are the only failures the pipeline retries besides timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a well-formed non-2xx response from the co-signer server, or
// a 2xx envelope carrying success:false. Always terminal, never retried.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// retryable reports whether an attempt failure may be retried. Server
// responses and malformed bodies are terminal; transport failures and
// timeouts are transient.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	return true
}
