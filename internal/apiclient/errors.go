package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthExpired means the session could not be kept alive: credentials were
// missing or malformed, or the refresh failed. The operator must sign in again.
var ErrAuthExpired = errors.New("session expired: please sign in again")

const networkErrorMessage = "Network Error: API is not accessible"

// NetworkError reports that no response reached the client at all.
type NetworkError struct {
	Method string
	URL    string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s (%s %s)", networkErrorMessage, e.Method, e.URL)
}

// HTTPError is a clean non-2xx response. Message is safe to show to an operator.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return e.Message
}

// StatusMessage maps a status code to the message surfaced to operators.
func StatusMessage(status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "Internal Server Error"
	case http.StatusUnauthorized:
		return "Invalid credentials"
	case http.StatusNotFound:
		return "Sorry! the data you are looking for could not be found"
	default:
		return fmt.Sprintf("Request failed with status code %d", status)
	}
}
