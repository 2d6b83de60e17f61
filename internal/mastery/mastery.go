// Package mastery classifies card states into mastery levels.
//
// Classification is a total, pure function of the current state: no
// history lookups, so a test can construct a state and assert its level
// directly. The leech flag always overrides.
package mastery

import "github.com/vocardo/vocardo/internal/srs"

// Level is a card's mastery classification.
type Level string

const (
	Learning  Level = "learning"
	Familiar  Level = "familiar"
	Known     Level = "known"
	Mastered  Level = "mastered"
	Permanent Level = "permanent"
	Leech     Level = "leech"
)

// Interval thresholds (days) shared by both algorithms for the upper
// levels: known below 180 days, mastered below two years, permanent
// beyond that.
const (
	knownIntervalDays    = 180
	masteredIntervalDays = 730
)

// Rule-based streak thresholds.
const (
	familiarStreak = 3
	knownStreak    = 5
)

// Memory-model stability thresholds (days).
const (
	familiarStability = 5
	knownStability    = 30
)

// Classify maps a card state to its mastery level, branching on the
// algorithm tag.
func Classify(state *srs.CardState) Level {
	if state.IsLeech {
		return Leech
	}
	switch state.Algorithm {
	case srs.AlgorithmMemory:
		return classifyMemory(state)
	default:
		return classifyRuleBased(state)
	}
}

func classifyRuleBased(state *srs.CardState) Level {
	switch {
	case state.ConsecutiveCorrect < familiarStreak:
		return Learning
	case state.ConsecutiveCorrect < knownStreak:
		return Familiar
	}
	return byInterval(float64(state.IntervalDays))
}

func classifyMemory(state *srs.CardState) Level {
	switch {
	case state.Stability < familiarStability:
		return Learning
	case state.Stability < knownStability:
		return Familiar
	}
	return byInterval(state.Stability)
}

func byInterval(days float64) Level {
	switch {
	case days < knownIntervalDays:
		return Known
	case days < masteredIntervalDays:
		return Mastered
	default:
		return Permanent
	}
}
