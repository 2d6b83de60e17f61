package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// SM2+ ease factor bounds.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	DefaultEaseFactor = 2.5
)

// SM2Config holds the tunables of the rule-based strategy.
type SM2Config struct {
	// LeechLapseRun is the number of consecutive failed reviews that
	// flags a card as a leech. The ease-factor-floor heuristic is
	// deliberately not used; a single explicit threshold keeps the
	// rule testable.
	LeechLapseRun int

	// MaxIntervalDays caps the interval growth.
	MaxIntervalDays int
}

// DefaultSM2Config returns the default rule-based tunables.
func DefaultSM2Config() SM2Config {
	return SM2Config{
		LeechLapseRun:   4,
		MaxIntervalDays: 3650,
	}
}

// SM2Plus is the rule-based SuperMemo-2 derivative. On success the
// interval grows by the ease factor and the ease factor creeps up; on
// failure the interval resets to one day and the ease factor drops.
type SM2Plus struct {
	cfg SM2Config
}

// NewSM2Plus creates the rule-based strategy.
func NewSM2Plus(cfg SM2Config) *SM2Plus {
	if cfg.LeechLapseRun <= 0 {
		cfg.LeechLapseRun = DefaultSM2Config().LeechLapseRun
	}
	if cfg.MaxIntervalDays <= 0 {
		cfg.MaxIntervalDays = DefaultSM2Config().MaxIntervalDays
	}
	return &SM2Plus{cfg: cfg}
}

func (s *SM2Plus) Algorithm() Algorithm { return AlgorithmSM2 }

func (s *SM2Plus) NewState(learnerID, itemID string, now time.Time) *CardState {
	return &CardState{
		ID:          uuid.NewString(),
		LearnerID:   learnerID,
		ItemID:      itemID,
		Algorithm:   AlgorithmSM2,
		ScheduledAt: now,
		EaseFactor:  DefaultEaseFactor,
	}
}

func (s *SM2Plus) ProcessReview(state *CardState, rating Rating, now time.Time) (ReviewResult, error) {
	if !rating.Valid() {
		return ReviewResult{}, fmt.Errorf("srs: rating %d out of range", int(rating))
	}

	c := state.Clone()

	if rating.Success() {
		c.ConsecutiveCorrect++
		c.ConsecutiveLapses = 0

		ivl := int(math.Round(float64(c.IntervalDays) * c.EaseFactor))
		if ivl < 1 {
			ivl = 1
		}
		if ivl > s.cfg.MaxIntervalDays {
			ivl = s.cfg.MaxIntervalDays
		}
		c.IntervalDays = ivl
		c.EaseFactor = math.Min(MaxEaseFactor, c.EaseFactor+0.1)
	} else {
		c.ConsecutiveCorrect = 0
		c.ConsecutiveLapses++
		c.IntervalDays = 1
		c.EaseFactor = math.Max(MinEaseFactor, c.EaseFactor-0.2)
	}

	becameLeech := false
	if !c.IsLeech && c.ConsecutiveLapses >= s.cfg.LeechLapseRun {
		c.IsLeech = true
		becameLeech = true
	}

	c.LastReviewAt = now
	c.ScheduledAt = now.AddDate(0, 0, c.IntervalDays)

	return ReviewResult{
		State:        c,
		NextDue:      c.ScheduledAt,
		IntervalDays: c.IntervalDays,
		BecameLeech:  becameLeech,
	}, nil
}
