package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Retention curve constants. The power curve R(t,S) = (1 + factor*t/S)^decay
// is calibrated so that R(S, S) equals the 0.9 retention target: a card's
// stability is the number of days until predicted recall drops to 90%.
const (
	retentionDecay  = -0.5
	retentionFactor = 19.0 / 81.0
)

// MemoryConfig holds the tunables of the stability/difficulty model.
type MemoryConfig struct {
	// TargetRetention is the recall probability the scheduler solves
	// for when picking the next interval.
	TargetRetention float64

	// MinStability is the floor stability never drops below, even
	// after a failure on a very mature card.
	MinStability float64

	// MaxIntervalDays caps the scheduled interval.
	MaxIntervalDays int

	// LeechLapseRun mirrors the rule-based leech threshold: this many
	// consecutive failures flags the card.
	LeechLapseRun int
}

// DefaultMemoryConfig returns the default memory-model tunables.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		TargetRetention: 0.90,
		MinStability:    0.25,
		MaxIntervalDays: 3650,
		LeechLapseRun:   4,
	}
}

// Stability growth / decay weights. Derived from the FSRS family of
// models with difficulty rescaled to [0, 1].
const (
	memGrowthScale    = 3.0  // overall growth rate on success
	memStabilityDecay = 0.25 // diminishing returns as stability grows
	memRetrievability = 2.0  // more growth the closer to forgetting
	memHardPenalty    = 0.6
	memEasyBonus      = 1.3
	memPerfectBonus   = 1.6
	memForgetScale    = 1.0
	memForgetDecay    = 0.3
	memForgetSpread   = 1.0
)

// MemoryModel is the stability/difficulty strategy. Stability is the
// expected number of days until predicted retention falls to the
// target; difficulty is a per-card hardness in [0, 1] nudged by
// performance.
type MemoryModel struct {
	cfg MemoryConfig
}

// NewMemoryModel creates the memory-model strategy.
func NewMemoryModel(cfg MemoryConfig) *MemoryModel {
	def := DefaultMemoryConfig()
	if cfg.TargetRetention <= 0 || cfg.TargetRetention >= 1 {
		cfg.TargetRetention = def.TargetRetention
	}
	if cfg.MinStability <= 0 {
		cfg.MinStability = def.MinStability
	}
	if cfg.MaxIntervalDays <= 0 {
		cfg.MaxIntervalDays = def.MaxIntervalDays
	}
	if cfg.LeechLapseRun <= 0 {
		cfg.LeechLapseRun = def.LeechLapseRun
	}
	return &MemoryModel{cfg: cfg}
}

func (m *MemoryModel) Algorithm() Algorithm { return AlgorithmMemory }

func (m *MemoryModel) NewState(learnerID, itemID string, now time.Time) *CardState {
	return &CardState{
		ID:          uuid.NewString(),
		LearnerID:   learnerID,
		ItemID:      itemID,
		Algorithm:   AlgorithmMemory,
		ScheduledAt: now,
		Difficulty:  0.5,
		Memory:      &MemorySnapshot{Version: SnapshotVersion, Difficulty: 0.5},
	}
}

// Retention computes the predicted recall probability after elapsedDays
// for the given stability. Pure function of its inputs.
func Retention(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	return math.Pow(1+retentionFactor*elapsedDays/stability, retentionDecay)
}

// PredictRetention forecasts recall probability for the card at the
// given date. Returns 0 for cards that have never been reviewed.
func (m *MemoryModel) PredictRetention(state *CardState, at time.Time) float64 {
	if !state.Reviewed() || state.Stability <= 0 {
		return 0
	}
	elapsed := at.Sub(state.LastReviewAt).Hours() / 24.0
	return Retention(elapsed, state.Stability)
}

func (m *MemoryModel) ProcessReview(state *CardState, rating Rating, now time.Time) (ReviewResult, error) {
	if !rating.Valid() {
		return ReviewResult{}, fmt.Errorf("srs: rating %d out of range", int(rating))
	}

	c := state.Clone()
	if c.Memory == nil {
		c.Memory = &MemorySnapshot{Version: SnapshotVersion, Difficulty: 0.5}
	}

	if !c.Reviewed() {
		c.Stability = initStability(rating)
		c.Difficulty = initDifficulty(rating)
	} else {
		elapsed := elapsedDays(c, now)
		r := Retention(elapsed, c.Stability)
		if rating.Success() {
			c.Stability = m.nextRecallStability(c.Difficulty, c.Stability, r, rating)
			c.Difficulty = clamp01(c.Difficulty - successDifficultyStep(rating))
		} else {
			c.Stability = m.nextForgetStability(c.Difficulty, c.Stability, r)
			c.Difficulty = clamp01(c.Difficulty + 0.10)
		}
	}

	if rating.Success() {
		c.ConsecutiveCorrect++
		c.ConsecutiveLapses = 0
	} else {
		c.ConsecutiveCorrect = 0
		c.ConsecutiveLapses++
		c.Memory.Lapses++
	}
	c.Memory.Reps++
	c.Memory.Stability = c.Stability
	c.Memory.Difficulty = c.Difficulty

	becameLeech := false
	if !c.IsLeech && c.ConsecutiveLapses >= m.cfg.LeechLapseRun {
		c.IsLeech = true
		becameLeech = true
	}

	c.IntervalDays = m.nextInterval(c.Stability)
	c.LastReviewAt = now
	c.ScheduledAt = now.AddDate(0, 0, c.IntervalDays)

	predicted := Retention(float64(c.IntervalDays), c.Stability)

	return ReviewResult{
		State:              c,
		NextDue:            c.ScheduledAt,
		IntervalDays:       c.IntervalDays,
		PredictedRetention: &predicted,
		BecameLeech:        becameLeech,
	}, nil
}

// nextInterval solves Retention(t, S) = target for t, in whole days.
func (m *MemoryModel) nextInterval(stability float64) int {
	t := stability / retentionFactor * (math.Pow(m.cfg.TargetRetention, 1.0/retentionDecay) - 1)
	days := int(math.Round(t))
	if days < 1 {
		days = 1
	}
	if days > m.cfg.MaxIntervalDays {
		days = m.cfg.MaxIntervalDays
	}
	return days
}

// nextRecallStability grows stability after a successful recall. Growth
// shrinks as stability and difficulty rise, and grows the further the
// review was from the last one (low retrievability).
func (m *MemoryModel) nextRecallStability(d, s, r float64, rating Rating) float64 {
	bonus := 1.0
	switch rating {
	case RatingHard:
		bonus = memHardPenalty
	case RatingEasy:
		bonus = memEasyBonus
	case RatingPerfect:
		bonus = memPerfectBonus
	}
	grow := memGrowthScale *
		(1.1 - d) *
		math.Pow(s, -memStabilityDecay) *
		(math.Exp((1-r)*memRetrievability) - 1) *
		bonus
	return s * (1 + grow)
}

// nextForgetStability drops stability after a failure. The drop is
// sharper for difficult cards but never goes below the floor, and
// never above the pre-failure stability.
func (m *MemoryModel) nextForgetStability(d, s, r float64) float64 {
	next := memForgetScale *
		math.Pow(d+0.2, -memForgetDecay) *
		(math.Pow(s+1, memForgetDecay) - 1) *
		math.Exp((1-r)*memForgetSpread)
	if next > s {
		next = s
	}
	return math.Max(m.cfg.MinStability, next)
}

// initStability seeds stability from the first rating.
func initStability(rating Rating) float64 {
	switch rating {
	case RatingAgain:
		return 0.5
	case RatingHard:
		return 1.2
	case RatingGood:
		return 2.5
	case RatingEasy:
		return 4.2
	default:
		return 5.8
	}
}

// initDifficulty seeds difficulty from the first rating: the harder the
// first answer, the harder the card starts out.
func initDifficulty(rating Rating) float64 {
	return clamp01(0.5 + 0.15*float64(int(RatingGood)-int(rating)))
}

func successDifficultyStep(rating Rating) float64 {
	if rating >= RatingPerfect {
		return 0.04
	}
	return 0.02
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
