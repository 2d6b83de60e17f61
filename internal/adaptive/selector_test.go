package adaptive

import (
	"math/rand"
	"testing"
)

func entry(id string, attempts int, difficulty, discrimination float64) PoolEntry {
	return PoolEntry{
		Item:           Item{ID: id, ConceptID: "c1"},
		Attempts:       attempts,
		Difficulty:     difficulty,
		Discrimination: discrimination,
	}
}

func newTestSelector() *Selector {
	return NewSelector(DefaultSelectorConfig(), rand.New(rand.NewSource(1)))
}

func TestSelectPrefersDifficultyInBand(t *testing.T) {
	s := newTestSelector()
	pool := []PoolEntry{
		entry("a", 50, 0.2, 0.5),
		entry("b", 50, 0.55, 0.5),
		entry("c", 50, 0.9, 0.5),
	}

	got, reason, err := s.Select(0.5, pool)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Item.ID != "b" {
		t.Errorf("selected %q, want b", got.Item.ID)
	}
	if reason != ReasonMatched {
		t.Errorf("reason = %q, want %q", reason, ReasonMatched)
	}
}

func TestSelectPrefersDiscriminatingItems(t *testing.T) {
	s := newTestSelector()
	pool := []PoolEntry{
		entry("dull", 50, 0.50, 0.05),
		entry("sharp", 50, 0.58, 0.45),
	}

	got, _, err := s.Select(0.5, pool)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Item.ID != "sharp" {
		t.Errorf("selected %q, want sharp despite larger distance", got.Item.ID)
	}
}

func TestSelectWidensBand(t *testing.T) {
	s := newTestSelector()
	pool := []PoolEntry{
		entry("far", 50, 0.75, 0.5),
	}

	got, reason, err := s.Select(0.5, pool)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Item.ID != "far" {
		t.Errorf("selected %q, want far", got.Item.ID)
	}
	if reason != ReasonWidened {
		t.Errorf("reason = %q, want %q", reason, ReasonWidened)
	}
}

func TestSelectUnderSampledUsesNeutralDifficulty(t *testing.T) {
	s := newTestSelector()
	// Raw difficulty 0.95 but only 2 attempts: treated as 0.5.
	pool := []PoolEntry{
		entry("new", 2, 0.95, 0),
		entry("hard", 50, 0.95, 0.5),
	}

	got, _, err := s.Select(0.5, pool)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Item.ID != "new" {
		t.Errorf("selected %q, want under-sampled item at neutral difficulty", got.Item.ID)
	}
}

func TestSelectDeterministicForIdenticalInputs(t *testing.T) {
	pool := []PoolEntry{
		entry("a", 50, 0.42, 0.5),
		entry("b", 50, 0.58, 0.5),
		entry("c", 50, 0.31, 0.2),
	}
	first, _, err := NewSelector(DefaultSelectorConfig(), rand.New(rand.NewSource(7))).Select(0.5, pool)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, _, err := NewSelector(DefaultSelectorConfig(), rand.New(rand.NewSource(7))).Select(0.5, pool)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if got.Item.ID != first.Item.ID {
			t.Fatalf("run %d selected %q, first run selected %q", i, got.Item.ID, first.Item.ID)
		}
	}
}

func TestSelectEmptyPool(t *testing.T) {
	s := newTestSelector()
	if _, _, err := s.Select(0.5, nil); err != ErrEmptyPool {
		t.Errorf("err = %v, want ErrEmptyPool", err)
	}
}

func TestEstimateRecordClampsToUnitRange(t *testing.T) {
	e := NewEstimate("l1", "c1")

	for i := 0; i < 30; i++ {
		e.Record(true)
	}
	if e.Ability != 1 {
		t.Errorf("ability = %v, want clamp at 1", e.Ability)
	}

	for i := 0; i < 60; i++ {
		e.Record(false)
	}
	if e.Ability != 0 {
		t.Errorf("ability = %v, want clamp at 0", e.Ability)
	}
	if e.Attempts != 90 {
		t.Errorf("attempts = %d, want 90", e.Attempts)
	}
}

func TestEstimateStep(t *testing.T) {
	e := NewEstimate("l1", "c1")
	e.Record(true)
	if e.Ability != 0.55 {
		t.Errorf("ability after correct = %v, want 0.55", e.Ability)
	}
	e.Record(false)
	if e.Ability != 0.5 {
		t.Errorf("ability after incorrect = %v, want 0.5", e.Ability)
	}
}
