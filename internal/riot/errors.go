package riot

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds returned by the client. Match them with errors.Is.
var (
	ErrNotFound         = errors.New("riot: not found")
	ErrForbidden        = errors.New("riot: api key rejected")
	ErrRateLimited      = errors.New("riot: rate limited")
	ErrUnavailable      = errors.New("riot: upstream unavailable")
	ErrMalformedPayload = errors.New("riot: malformed payload")
)

// APIError is a non-2xx response from the Riot API.
type APIError struct {
	StatusCode int
	URL        string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot api returned status %d for %s", e.StatusCode, e.URL)
}

// Is maps the status code onto one of the error kinds above.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrForbidden:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnavailable:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsRetryable reports whether err is worth retrying later: rate limits,
// 5xx responses and transport failures.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}

// StatusCode extracts the HTTP status from err, or 0 if there is none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
