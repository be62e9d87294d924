package nn

import "errors"

// Error kinds for model construction and use. All are synchronous and
// non-retryable.
var (
	// ErrInvalidConfiguration reports an unrecognized or inconsistent value in
	// a construction-time configuration. Invalid values fail fast at
	// construction, not at first use.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUninitialized reports a forward call on a component whose setup has
	// not completed.
	ErrUninitialized = errors.New("component not initialized")
)
