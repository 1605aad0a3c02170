package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates the upstream has no data for the requested game or date.
// The stream loop surfaces it to viewers as "waiting for game to start".
var ErrNotFound = errors.New("provider: not found")

// ErrProviderUnavailable indicates the provider is missing or misconfigured.
var ErrProviderUnavailable = errors.New("provider: unavailable")

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}
