package srs

import "time"

// MigrateToMemory converts a rule-based card to the memory model,
// reinitializing stability and difficulty from the rule-based history.
// The current interval becomes the seed stability (an interval the
// learner was holding is a fair stability estimate), and the ease
// factor maps linearly onto difficulty: ease 1.3 -> 0.9, ease 3.0 -> 0.1.
// Returns a new state; the input is not mutated. Memory-model cards
// pass through unchanged.
func MigrateToMemory(state *CardState, now time.Time) *CardState {
	if state.Algorithm == AlgorithmMemory {
		return state.Clone()
	}

	c := state.Clone()
	c.Algorithm = AlgorithmMemory

	stability := float64(c.IntervalDays)
	if stability < 1 {
		stability = 1
	}
	difficulty := difficultyFromEase(c.EaseFactor)

	c.Stability = stability
	c.Difficulty = difficulty
	c.Memory = &MemorySnapshot{
		Version:    SnapshotVersion,
		Stability:  stability,
		Difficulty: difficulty,
		Reps:       c.TotalReviews,
		Lapses:     c.TotalReviews - c.TotalCorrect,
	}
	return c
}

// difficultyFromEase maps the SM2 ease range [1.3, 3.0] onto the
// memory-model difficulty range, inverted: easy cards (high ease) are
// low difficulty.
func difficultyFromEase(ease float64) float64 {
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}
	if ease > MaxEaseFactor {
		ease = MaxEaseFactor
	}
	frac := (ease - MinEaseFactor) / (MaxEaseFactor - MinEaseFactor)
	return clamp01(0.9 - 0.8*frac)
}
