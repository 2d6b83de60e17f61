package srs

import (
	"fmt"
	"time"
)

// ReviewResult is the outcome of processing one review.
type ReviewResult struct {
	// State is the updated card state. The input state is never mutated.
	State *CardState

	NextDue      time.Time
	IntervalDays int

	// PredictedRetention is the recall probability forecast at NextDue.
	// Only set by the memory model.
	PredictedRetention *float64

	// BecameLeech is true when this review tripped the leech threshold.
	BecameLeech bool
}

// Strategy is the common contract for the two scheduling algorithms.
// Implementations are stateless and pure: ProcessReview never mutates
// the input state and never fails for a valid rating. Out-of-range
// ratings are a precondition violation and must be rejected by the
// caller before dispatch.
type Strategy interface {
	Algorithm() Algorithm

	// NewState creates the initial card state for a learner-item pair.
	// The card is due immediately with zero reviews.
	NewState(learnerID, itemID string, now time.Time) *CardState

	// ProcessReview applies one graded review and returns the new state
	// plus the next schedule.
	ProcessReview(state *CardState, rating Rating, now time.Time) (ReviewResult, error)
}

// Registry dispatches to a Strategy by algorithm tag. Plain map dispatch
// keeps both implementations independently testable.
type Registry map[Algorithm]Strategy

// NewRegistry builds a registry holding both strategies.
func NewRegistry(sm2 *SM2Plus, mem *MemoryModel) Registry {
	return Registry{
		AlgorithmSM2:    sm2,
		AlgorithmMemory: mem,
	}
}

// For returns the strategy for the given tag.
func (r Registry) For(alg Algorithm) (Strategy, error) {
	s, ok := r[alg]
	if !ok {
		return nil, fmt.Errorf("srs: unknown algorithm %q", alg)
	}
	return s, nil
}

func elapsedDays(state *CardState, now time.Time) float64 {
	if !state.Reviewed() {
		return 0
	}
	d := now.Sub(state.LastReviewAt).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}
