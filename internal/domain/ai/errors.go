package ai

import "errors"

// Provider failure kinds. Adapters wrap the provider's own error with one of these
// so callers can decide between retrying and failing fast.
var (
	// ErrProviderTimeout indicates the single bounded wait for the provider elapsed.
	ErrProviderTimeout = errors.New("provider timeout")
	// ErrProviderRateLimited indicates the provider returned a quota/limit error (HTTP 429 or similar).
	ErrProviderRateLimited = errors.New("provider rate limited")
	// ErrProviderRejected indicates the provider refused the request itself as malformed.
	ErrProviderRejected = errors.New("provider rejected request")
	// ErrProviderUnavailable indicates the provider could not serve the request right now.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Retryable reports whether err may be resubmitted once. Only timeouts and
// unavailability qualify; a rejected request would be rejected again.
func Retryable(err error) bool {
	return errors.Is(err, ErrProviderTimeout) || errors.Is(err, ErrProviderUnavailable)
}

// ClassifyStatus maps an HTTP status code returned by a provider to a failure kind.
// Zero means the status was not available.
func ClassifyStatus(code int) error {
	switch {
	case code == 429:
		return ErrProviderRateLimited
	case code == 408 || code == 504:
		return ErrProviderTimeout
	case code >= 500:
		return ErrProviderUnavailable
	case code >= 400:
		return ErrProviderRejected
	default:
		return ErrProviderUnavailable
	}
}
