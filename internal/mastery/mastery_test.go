package mastery

import (
	"testing"
	"time"

	"github.com/vocardo/vocardo/internal/srs"
)

func testNow() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestClassifyRuleBased(t *testing.T) {
	tests := []struct {
		name     string
		streak   int
		interval int
		want     Level
	}{
		{"no streak", 0, 1, Learning},
		{"short streak", 2, 40, Learning},
		{"streak of three", 3, 8, Familiar},
		{"streak of four", 4, 400, Familiar},
		{"streak of five short interval", 5, 64, Known},
		{"long interval", 6, 200, Mastered},
		{"very long interval", 8, 730, Permanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &srs.CardState{
				Algorithm:          srs.AlgorithmSM2,
				ConsecutiveCorrect: tt.streak,
				IntervalDays:       tt.interval,
			}
			if got := Classify(state); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyMemory(t *testing.T) {
	tests := []struct {
		name      string
		stability float64
		want      Level
	}{
		{"fresh", 0.5, Learning},
		{"just under familiar", 4.99, Learning},
		{"familiar", 5, Familiar},
		{"known", 30, Known},
		{"mastered", 180, Mastered},
		{"permanent", 730, Permanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &srs.CardState{
				Algorithm: srs.AlgorithmMemory,
				Stability: tt.stability,
			}
			if got := Classify(state); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyLeechOverrides(t *testing.T) {
	states := []*srs.CardState{
		{Algorithm: srs.AlgorithmSM2, ConsecutiveCorrect: 10, IntervalDays: 1000, IsLeech: true},
		{Algorithm: srs.AlgorithmMemory, Stability: 1000, IsLeech: true},
	}
	for _, state := range states {
		if got := Classify(state); got != Leech {
			t.Errorf("Classify(%v card) = %v, want leech", state.Algorithm, got)
		}
	}
}

func TestClassifyIsPure(t *testing.T) {
	a := &srs.CardState{Algorithm: srs.AlgorithmSM2, ConsecutiveCorrect: 4, IntervalDays: 10, TotalReviews: 7}
	b := &srs.CardState{Algorithm: srs.AlgorithmSM2, ConsecutiveCorrect: 4, IntervalDays: 10, TotalReviews: 99}
	if Classify(a) != Classify(b) {
		t.Error("states with identical relevant fields must classify identically")
	}
}

// Five GOOD reviews take a fresh rule-based
// card learning -> familiar -> known; one AGAIN resets it to learning.
func TestClassifyScenario_RuleBasedProgression(t *testing.T) {
	s := srs.NewSM2Plus(srs.DefaultSM2Config())
	c := s.NewState("l", "i", testNow())

	want := []Level{Learning, Learning, Familiar, Familiar, Known}
	for i, w := range want {
		res, err := s.ProcessReview(c, srs.RatingGood, c.ScheduledAt)
		if err != nil {
			t.Fatalf("review %d: %v", i+1, err)
		}
		c = res.State
		if got := Classify(c); got != w {
			t.Fatalf("after review %d: Classify = %v, want %v", i+1, got, w)
		}
	}

	res, err := s.ProcessReview(c, srs.RatingAgain, c.ScheduledAt)
	if err != nil {
		t.Fatalf("failing review: %v", err)
	}
	if got := Classify(res.State); got != Learning {
		t.Errorf("after AGAIN: Classify = %v, want learning", got)
	}
}
