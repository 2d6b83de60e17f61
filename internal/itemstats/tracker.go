// Package itemstats maintains running quality statistics for
// multiple-choice items: empirical difficulty, discrimination, and
// review flags. Statistics are advisory; they never gate scheduling.
package itemstats

import (
	"fmt"
	"sort"
)

// Stats is the mutable sidecar for one item.
type Stats struct {
	ItemID         string
	Attempts       int
	Correct        int
	Difficulty     float64 // 1 - correct rate
	Discrimination float64 // top-tercile accuracy minus bottom-tercile accuracy
	OptionCounts   []int   // selections per option index
	Flagged        bool
	FlagReason     string
}

// CorrectRate returns the empirical correct rate, 0 with no attempts.
func (s *Stats) CorrectRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// Attempt is one graded answer with the learner's ability at the time.
// A bounded window of recent attempts backs the discrimination
// computation.
type Attempt struct {
	Ability float64
	Correct bool
}

// Config holds the tracker tunables.
type Config struct {
	// MinDiscrimination flags items that fail to separate strong from
	// weak learners.
	MinDiscrimination float64
	// MinDifficulty / MaxDifficulty flag items that are too easy or
	// too hard to carry signal.
	MinDifficulty float64
	MaxDifficulty float64
	// FlagSample is the attempt count before quality flags apply.
	FlagSample int
	// Window is how many recent attempts feed discrimination.
	Window int
	// RecomputeEvery bounds the cost of the tercile partition: the
	// engine recomputes discrimination only every N attempts.
	RecomputeEvery int
}

// DefaultConfig returns the default tracker tunables.
func DefaultConfig() Config {
	return Config{
		MinDiscrimination: 0.30,
		MinDifficulty:     0.20,
		MaxDifficulty:     0.80,
		FlagSample:        20,
		Window:            50,
		RecomputeEvery:    5,
	}
}

// Tracker updates item statistics from graded attempts.
type Tracker struct {
	cfg Config
}

// NewTracker creates a tracker.
func NewTracker(cfg Config) *Tracker {
	if cfg.Window <= 0 {
		cfg = DefaultConfig()
	}
	return &Tracker{cfg: cfg}
}

// Config returns the tracker's tunables.
func (t *Tracker) Config() Config { return t.cfg }

// Record folds one graded attempt into the stats: counters, the chosen
// option's selection count, and the running difficulty. Discrimination
// is recomputed separately (see ShouldRecompute / Discrimination).
func (t *Tracker) Record(s *Stats, selectedIndex int, optionCount int, correct bool) error {
	if selectedIndex < 0 || selectedIndex >= optionCount {
		return fmt.Errorf("itemstats: selected index %d out of range [0,%d)", selectedIndex, optionCount)
	}
	if len(s.OptionCounts) < optionCount {
		grown := make([]int, optionCount)
		copy(grown, s.OptionCounts)
		s.OptionCounts = grown
	}

	s.Attempts++
	if correct {
		s.Correct++
	}
	s.OptionCounts[selectedIndex]++
	s.Difficulty = 1 - s.CorrectRate()
	return nil
}

// ShouldRecompute reports whether the discrimination estimate is due
// for a refresh after the attempt count reached its current value.
func (t *Tracker) ShouldRecompute(attempts int) bool {
	return attempts > 0 && attempts%t.cfg.RecomputeEvery == 0
}

// Discrimination partitions the recent attempts into ability terciles
// and returns top-tercile accuracy minus bottom-tercile accuracy.
// Returns 0 when fewer than three attempts exist.
func (t *Tracker) Discrimination(recent []Attempt) float64 {
	if len(recent) < 3 {
		return 0
	}
	if len(recent) > t.cfg.Window {
		recent = recent[len(recent)-t.cfg.Window:]
	}

	sorted := make([]Attempt, len(recent))
	copy(sorted, recent)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ability < sorted[j].Ability })

	third := len(sorted) / 3
	bottom := sorted[:third]
	top := sorted[len(sorted)-third:]
	return accuracy(top) - accuracy(bottom)
}

// Evaluate applies the quality-flag rules and updates the stats in
// place. An item is flagged when, with enough attempts, it fails to
// discriminate, sits outside the useful difficulty range, or has a
// distractor nobody ever picks.
func (t *Tracker) Evaluate(s *Stats) {
	s.Flagged = false
	s.FlagReason = ""

	if s.Attempts >= t.cfg.FlagSample && s.Discrimination < t.cfg.MinDiscrimination {
		s.Flagged = true
		s.FlagReason = "low_discrimination"
		return
	}
	if s.Attempts > 0 && s.Difficulty < t.cfg.MinDifficulty {
		s.Flagged = true
		s.FlagReason = "too_easy"
		return
	}
	if s.Difficulty > t.cfg.MaxDifficulty {
		s.Flagged = true
		s.FlagReason = "too_hard"
		return
	}
	if s.Attempts >= t.cfg.FlagSample {
		for _, n := range s.OptionCounts {
			if n == 0 {
				s.Flagged = true
				s.FlagReason = "dead_distractor"
				return
			}
		}
	}
}

func accuracy(attempts []Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(attempts))
}
