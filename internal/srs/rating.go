package srs

import "fmt"

// Rating grades the outcome of a single review on a 0-4 ordinal scale.
type Rating int

const (
	RatingAgain   Rating = 0
	RatingHard    Rating = 1
	RatingGood    Rating = 2
	RatingEasy    Rating = 3
	RatingPerfect Rating = 4
)

// Valid reports whether r is in the defined 0-4 range.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingPerfect
}

// Success reports whether the rating counts as a retained answer.
// Good and above is a success; Again and Hard are lapses.
func (r Rating) Success() bool {
	return r >= RatingGood
}

func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	case RatingPerfect:
		return "perfect"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}
