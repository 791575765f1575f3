package model

import "time"

// Default values applied when a trigger definition leaves them unset.
const (
	// DefaultActionTimeout bounds a single delivery attempt.
	DefaultActionTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 3

	// DefaultRateWindow is the fixed window the per-trigger fire counter
	// is bound to.
	DefaultRateWindow = 60 * time.Second

	// DefaultBackoffBase is the base used for exponential retry backoff
	// (base * 2^attempt).
	DefaultBackoffBase = 1 * time.Second
)
