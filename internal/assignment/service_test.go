package assignment

import (
	"context"
	"math/rand"
	"testing"

	"github.com/vocardo/vocardo/internal/srs"
	"github.com/vocardo/vocardo/internal/store"
)

type fakeAssignments struct {
	byLearner map[string]*store.Assignment
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{byLearner: make(map[string]*store.Assignment)}
}

func (f *fakeAssignments) Get(_ context.Context, learnerID string) (*store.Assignment, error) {
	a, ok := f.byLearner[learnerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignments) Upsert(_ context.Context, a *store.Assignment) error {
	cp := *a
	f.byLearner[a.LearnerID] = &cp
	return nil
}

func (f *fakeAssignments) IncrementReviews(_ context.Context, learnerID string) error {
	if a, ok := f.byLearner[learnerID]; ok {
		a.ReviewCount++
	}
	return nil
}

func TestGetOrAssignCreatesOnce(t *testing.T) {
	repo := newFakeAssignments()
	svc := NewService(repo, DefaultConfig(), rand.New(rand.NewSource(1)), nil)
	ctx := context.Background()

	first, err := svc.GetOrAssign(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOrAssign: %v", err)
	}
	if first.Reason != ReasonRandom {
		t.Errorf("reason = %q, want %q", first.Reason, ReasonRandom)
	}

	second, err := svc.GetOrAssign(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOrAssign again: %v", err)
	}
	if second.Algorithm != first.Algorithm {
		t.Errorf("assignment not stable: %s then %s", first.Algorithm, second.Algorithm)
	}
}

func TestGetOrAssignSplitsEvenly(t *testing.T) {
	repo := newFakeAssignments()
	svc := NewService(repo, DefaultConfig(), rand.New(rand.NewSource(42)), nil)
	ctx := context.Background()

	counts := map[srs.Algorithm]int{}
	for i := 0; i < 200; i++ {
		a, err := svc.GetOrAssign(ctx, string(rune('a'+i%26))+string(rune('0'+i/26)))
		if err != nil {
			t.Fatalf("GetOrAssign: %v", err)
		}
		counts[a.Algorithm]++
	}
	if counts[srs.AlgorithmSM2] < 60 || counts[srs.AlgorithmMemory] < 60 {
		t.Errorf("split too uneven: %v", counts)
	}
}

func TestEligibleForMigration(t *testing.T) {
	svc := NewService(newFakeAssignments(), DefaultConfig(), nil, nil)

	if svc.EligibleForMigration(&store.Assignment{ReviewCount: 99}) {
		t.Error("99 reviews must not be eligible")
	}
	if !svc.EligibleForMigration(&store.Assignment{ReviewCount: 100}) {
		t.Error("100 reviews must be eligible")
	}
}
