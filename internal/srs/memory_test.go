package srs

import (
	"math"
	"testing"
	"time"
)

func newMemCard(t *testing.T) (*MemoryModel, *CardState) {
	t.Helper()
	m := NewMemoryModel(DefaultMemoryConfig())
	return m, m.NewState("learner-1", "item-1", testNow)
}

func reviewN(t *testing.T, m *MemoryModel, c *CardState, rating Rating, n int) *CardState {
	t.Helper()
	now := testNow
	for i := 0; i < n; i++ {
		res, err := m.ProcessReview(c, rating, now)
		if err != nil {
			t.Fatalf("ProcessReview: %v", err)
		}
		c = res.State
		now = res.NextDue
	}
	return c
}

func TestMemoryFirstReview_InitializesState(t *testing.T) {
	m, c := newMemCard(t)

	res, err := m.ProcessReview(c, RatingGood, testNow)
	if err != nil {
		t.Fatalf("ProcessReview: %v", err)
	}
	c = res.State

	if c.Stability != 2.5 {
		t.Errorf("Stability = %v, want 2.5", c.Stability)
	}
	if c.Difficulty != 0.5 {
		t.Errorf("Difficulty = %v, want 0.5", c.Difficulty)
	}
	if c.Memory == nil || c.Memory.Reps != 1 {
		t.Errorf("snapshot reps = %+v, want 1", c.Memory)
	}
	if res.PredictedRetention == nil {
		t.Fatal("expected predicted retention")
	}
}

func TestMemorySuccess_GrowsStability(t *testing.T) {
	m, c := newMemCard(t)
	c = reviewN(t, m, c, RatingGood, 1)

	prev := c.Stability
	for i := 0; i < 6; i++ {
		res, err := m.ProcessReview(c, RatingGood, c.ScheduledAt)
		if err != nil {
			t.Fatalf("ProcessReview: %v", err)
		}
		c = res.State
		if c.Stability <= prev {
			t.Fatalf("stability did not grow: %v -> %v", prev, c.Stability)
		}
		prev = c.Stability
	}
}

func TestMemorySuccess_DiminishingReturns(t *testing.T) {
	m := NewMemoryModel(DefaultMemoryConfig())

	// Relative growth at high stability must be smaller than at low
	// stability for the same difficulty and retrievability.
	lowGrow := m.nextRecallStability(0.5, 2, 0.9, RatingGood) / 2
	highGrow := m.nextRecallStability(0.5, 200, 0.9, RatingGood) / 200
	if highGrow >= lowGrow {
		t.Errorf("growth ratio at S=200 (%v) should be below S=2 (%v)", highGrow, lowGrow)
	}
}

func TestMemoryFailure_DropsToFloorNotBelow(t *testing.T) {
	m, c := newMemCard(t)
	c = reviewN(t, m, c, RatingPerfect, 8)

	if c.Stability < 30 {
		t.Fatalf("precondition: expected mature card, stability %v", c.Stability)
	}

	floor := DefaultMemoryConfig().MinStability
	for i := 0; i < 10; i++ {
		res, err := m.ProcessReview(c, RatingAgain, c.ScheduledAt)
		if err != nil {
			t.Fatalf("ProcessReview: %v", err)
		}
		if res.State.Stability < floor {
			t.Fatalf("stability %v below floor %v", res.State.Stability, floor)
		}
		if res.State.Stability > c.Stability {
			t.Fatalf("stability rose on failure: %v -> %v", c.Stability, res.State.Stability)
		}
		c = res.State
	}
}

func TestMemoryFailure_RaisesDifficulty(t *testing.T) {
	m, c := newMemCard(t)
	c = reviewN(t, m, c, RatingGood, 2)

	before := c.Difficulty
	res, _ := m.ProcessReview(c, RatingAgain, c.ScheduledAt)
	if res.State.Difficulty <= before {
		t.Errorf("difficulty %v should rise after failure (was %v)", res.State.Difficulty, before)
	}

	after := res.State.Difficulty
	res, _ = m.ProcessReview(res.State, RatingGood, res.NextDue)
	if res.State.Difficulty >= after {
		t.Errorf("difficulty %v should fall after success (was %v)", res.State.Difficulty, after)
	}
}

func TestMemoryDifficulty_StaysInRange(t *testing.T) {
	m, c := newMemCard(t)
	c = reviewN(t, m, c, RatingAgain, 30)
	if c.Difficulty < 0 || c.Difficulty > 1 {
		t.Errorf("difficulty %v out of [0,1] after failures", c.Difficulty)
	}
	c = reviewN(t, m, c, RatingPerfect, 60)
	if c.Difficulty < 0 || c.Difficulty > 1 {
		t.Errorf("difficulty %v out of [0,1] after successes", c.Difficulty)
	}
}

func TestRetention_PureAndMonotonic(t *testing.T) {
	// At t = S the curve sits at the 0.9 target by construction.
	if r := Retention(10, 10); math.Abs(r-0.9) > 1e-9 {
		t.Errorf("Retention(S, S) = %v, want 0.9", r)
	}
	if r := Retention(0, 10); r != 1 {
		t.Errorf("Retention(0, S) = %v, want 1", r)
	}
	prev := 1.0
	for _, days := range []float64{1, 5, 10, 50, 200} {
		r := Retention(days, 10)
		if r >= prev {
			t.Fatalf("retention not strictly decreasing at t=%v: %v >= %v", days, r, prev)
		}
		prev = r
	}
}

func TestMemoryNextInterval_MatchesStabilityAtTarget(t *testing.T) {
	m := NewMemoryModel(DefaultMemoryConfig())

	// With a 0.9 target the interval solves to the stability itself.
	for _, s := range []float64{1, 3.7, 12, 90} {
		got := m.nextInterval(s)
		want := int(math.Round(s))
		if want < 1 {
			want = 1
		}
		if got != want {
			t.Errorf("nextInterval(%v) = %d, want %d", s, got, want)
		}
	}
}

func TestMemoryPredictRetention_UnreviewedIsZero(t *testing.T) {
	m, c := newMemCard(t)
	if r := m.PredictRetention(c, testNow); r != 0 {
		t.Errorf("PredictRetention on new card = %v, want 0", r)
	}
}

func TestMemoryLeech_AfterLapseRun(t *testing.T) {
	m, c := newMemCard(t)
	c = reviewN(t, m, c, RatingGood, 1)

	var became bool
	for i := 0; i < 4; i++ {
		res, _ := m.ProcessReview(c, RatingAgain, c.ScheduledAt)
		became = res.BecameLeech
		c = res.State
	}
	if !became || !c.IsLeech {
		t.Error("expected leech after 4 consecutive lapses")
	}
}

func TestMemoryDoesNotMutateInput(t *testing.T) {
	m, c := newMemCard(t)
	c = reviewN(t, m, c, RatingGood, 1)

	snapBefore := *c.Memory
	stabilityBefore := c.Stability

	if _, err := m.ProcessReview(c, RatingAgain, c.ScheduledAt); err != nil {
		t.Fatalf("ProcessReview: %v", err)
	}
	if *c.Memory != snapBefore || c.Stability != stabilityBefore {
		t.Error("input state was mutated")
	}
}

func TestMemoryRejectsInvalidRating(t *testing.T) {
	m, c := newMemCard(t)
	if _, err := m.ProcessReview(c, Rating(9), testNow); err == nil {
		t.Error("expected error for out-of-range rating")
	}
}

func TestElapsedDays_ClockSkewClampsToZero(t *testing.T) {
	_, c := newMemCard(t)
	c.LastReviewAt = testNow.Add(time.Hour)
	if d := elapsedDays(c, testNow); d != 0 {
		t.Errorf("elapsedDays = %v, want 0 for review in the future", d)
	}
}
