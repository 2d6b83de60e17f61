package srs

import "time"

// Algorithm identifies which scheduling strategy owns a card.
// A card keeps exactly one algorithm for its lifetime; switching is an
// explicit migration that reconstructs the memory-model fields.
type Algorithm string

const (
	// AlgorithmSM2 is the rule-based SuperMemo-2 derivative.
	AlgorithmSM2 Algorithm = "sm2_plus"
	// AlgorithmMemory is the stability/difficulty memory model.
	AlgorithmMemory Algorithm = "memory"
)

// Valid reports whether a is a known algorithm tag.
func (a Algorithm) Valid() bool {
	return a == AlgorithmSM2 || a == AlgorithmMemory
}

// CardState is the durable memory-model record for one (learner, item) pair.
// All fields are present regardless of algorithm; which subset is
// authoritative depends on the Algorithm tag:
//
//   - AlgorithmSM2: EaseFactor, ConsecutiveCorrect, ConsecutiveLapses
//   - AlgorithmMemory: Stability, Difficulty, Memory snapshot
//
// Scheduling fields, counters, and the leech flag are shared.
type CardState struct {
	ID        string
	LearnerID string
	ItemID    string
	Algorithm Algorithm

	ScheduledAt  time.Time
	LastReviewAt time.Time // zero before the first review
	IntervalDays int

	// Rule-based fields.
	EaseFactor         float64 // bounded [1.3, 3.0]
	ConsecutiveCorrect int
	ConsecutiveLapses  int

	// Memory-model fields. Memory is the full opaque snapshot and
	// round-trips exactly; Stability/Difficulty mirror it for queries.
	Stability  float64 // days, >= 0 (0 = never reviewed)
	Difficulty float64 // in [0, 1]
	Memory     *MemorySnapshot

	MasteryLevel string
	IsLeech      bool // sticky once set

	TotalReviews int
	TotalCorrect int

	// Version backs the optimistic-concurrency check on updates.
	Version int64
}

// Reviewed reports whether the card has been reviewed at least once.
func (c *CardState) Reviewed() bool {
	return !c.LastReviewAt.IsZero()
}

// Due reports whether the card's scheduled date has arrived.
func (c *CardState) Due(now time.Time) bool {
	return !c.ScheduledAt.After(now)
}

// DaysOverdue returns how many days past due the card is, 0 if not yet due.
func (c *CardState) DaysOverdue(now time.Time) float64 {
	if !c.Due(now) {
		return 0
	}
	return now.Sub(c.ScheduledAt).Hours() / 24.0
}

// ReviewedOn reports whether the card's last review fell on the same
// calendar day as now (UTC). Used to exclude already-completed cards
// from the due set.
func (c *CardState) ReviewedOn(now time.Time) bool {
	if !c.Reviewed() {
		return false
	}
	y1, m1, d1 := c.LastReviewAt.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Clone returns a deep copy of the card state.
func (c *CardState) Clone() *CardState {
	out := *c
	if c.Memory != nil {
		m := *c.Memory
		out.Memory = &m
	}
	return &out
}
