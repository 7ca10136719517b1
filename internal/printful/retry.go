package printful

import "time"

// RetryPolicy bounds transport-level retries in the gateway. Application
// errors (a parsed vendor error body) are never retried regardless of
// policy.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Backoff returns the delay before the given retry attempt
	// (attempt is 1-based and counts completed failures).
	Backoff func(attempt int) time.Duration
}

// DefaultRetryPolicy retries twice after the initial attempt with
// exponential backoff: 1s, 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Second << (attempt - 1)
		},
	}
}

// NoBackoff keeps the attempt budget but removes all delays. Intended
// for tests.
func NoBackoff(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     func(int) time.Duration { return 0 },
	}
}
