package fetcher

import (
	"fmt"
	"net/http"
)

// FetchError is returned once a URL could not be fetched, either because retries ran out
// or because the response was a non-retryable client error.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// statusError carries a non-2xx response status through the retry loop.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

// IsRetryable reports whether a response status is worth another attempt. Only 4xx
// other than 429 is final; an unexpected 3xx is treated like a server error.
func IsRetryable(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode < 400 || statusCode >= 500
}
