package verify

import "github.com/vocardo/vocardo/internal/srs"

// Latency thresholds (milliseconds) for the answer-to-rating fusion.
const (
	fastAnswerMs    = 2000
	normalAnswerMs  = 5000
	struggledReadMs = 10000
)

// hardItemDifficulty is the difficulty above which a normal-speed
// correct answer still earns an Easy rating.
const hardItemDifficulty = 0.7

// FuseRating maps a graded multiple-choice answer to a review rating.
// The mapping is a pure function of correctness, answer latency, and
// the item's empirical difficulty:
//
//   - wrong after a long struggle reads as a near miss (Hard); wrong
//     quickly reads as not knowing the answer (Again)
//   - right fast is Easy; right at normal speed is Easy only on a hard
//     item, otherwise Good; right slowly is Good regardless
func FuseRating(correct bool, latencyMs int64, itemDifficulty float64) srs.Rating {
	if !correct {
		if latencyMs > struggledReadMs {
			return srs.RatingHard
		}
		return srs.RatingAgain
	}
	switch {
	case latencyMs < fastAnswerMs:
		return srs.RatingEasy
	case latencyMs < normalAnswerMs && itemDifficulty > hardItemDifficulty:
		return srs.RatingEasy
	default:
		return srs.RatingGood
	}
}
