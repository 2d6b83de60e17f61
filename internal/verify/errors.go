package verify

import "github.com/pkg/errors"

// Sentinel errors of the engine's exposed operations. Transports map
// these to their own status codes.
var (
	// ErrValidation marks malformed input: empty IDs, out-of-range
	// ratings or indexes, negative latencies.
	ErrValidation = errors.New("verify: invalid input")

	// ErrNotFound marks a reference to a card, item, or learner record
	// that does not exist.
	ErrNotFound = errors.New("verify: not found")

	// ErrConflict marks a lost optimistic-concurrency race or an
	// attempt to create a duplicate. Safe to retry after re-reading.
	ErrConflict = errors.New("verify: conflict")

	// ErrNotEligible marks a migration request for a learner below the
	// review-count threshold.
	ErrNotEligible = errors.New("verify: not eligible")
)
