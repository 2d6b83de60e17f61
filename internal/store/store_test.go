package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vocardo/vocardo/internal/adaptive"
	"github.com/vocardo/vocardo/internal/itemstats"
	"github.com/vocardo/vocardo/internal/srs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCard(learnerID, itemID string) *srs.CardState {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &srs.CardState{
		ID:           uuid.NewString(),
		LearnerID:    learnerID,
		ItemID:       itemID,
		Algorithm:    srs.AlgorithmSM2,
		ScheduledAt:  now,
		EaseFactor:   2.5,
		MasteryLevel: "learning",
		Version:      1,
	}
}

func TestCardRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cards := s.Cards()

	card := testCard("l1", "i1")
	card.Memory = &srs.MemorySnapshot{Version: srs.SnapshotVersion, Stability: 3.5, Difficulty: 0.4, Reps: 2}
	require.NoError(t, cards.Create(ctx, card))

	got, err := cards.Get(ctx, card.ID)
	require.NoError(t, err)
	require.Equal(t, card.LearnerID, got.LearnerID)
	require.Equal(t, card.ScheduledAt, got.ScheduledAt)
	require.True(t, got.LastReviewAt.IsZero())
	require.NotNil(t, got.Memory)
	require.Equal(t, 3.5, got.Memory.Stability)
	require.Equal(t, int64(1), got.Version)

	byPair, err := cards.GetByLearnerItem(ctx, "l1", "i1")
	require.NoError(t, err)
	require.Equal(t, card.ID, byPair.ID)

	_, err = cards.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCardDuplicateLearnerItemRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cards := s.Cards()

	require.NoError(t, cards.Create(ctx, testCard("l1", "i1")))
	require.Error(t, cards.Create(ctx, testCard("l1", "i1")))
}

func TestListScheduled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cards := s.Cards()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	due := testCard("l1", "due")
	due.ScheduledAt = now.Add(-24 * time.Hour)
	future := testCard("l1", "future")
	future.ScheduledAt = now.Add(24 * time.Hour)
	other := testCard("l2", "due")
	other.ScheduledAt = now.Add(-24 * time.Hour)

	for _, c := range []*srs.CardState{due, future, other} {
		require.NoError(t, cards.Create(ctx, c))
	}

	got, err := cards.ListScheduled(ctx, "l1", now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "due", got[0].ItemID)
}

func TestApplyReviewCommitsCardAndEvent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cards := s.Cards()

	card := testCard("l1", "i1")
	require.NoError(t, cards.Create(ctx, card))

	reviewed := card.Clone()
	reviewed.IntervalDays = 3
	reviewed.ConsecutiveCorrect = 1
	reviewed.LastReviewAt = card.ScheduledAt
	reviewed.ScheduledAt = card.ScheduledAt.AddDate(0, 0, 3)
	reviewed.TotalReviews = 1
	reviewed.TotalCorrect = 1

	event := &ReviewEvent{
		ID:            uuid.NewString(),
		CardID:        card.ID,
		Rating:        srs.RatingGood,
		Retained:      true,
		IntervalAfter: 3,
		CreatedAt:     card.ScheduledAt,
	}
	require.NoError(t, cards.ApplyReview(ctx, reviewed, 1, event))
	require.Equal(t, int64(2), reviewed.Version)

	got, err := cards.Get(ctx, card.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.IntervalDays)
	require.Equal(t, int64(2), got.Version)

	events, err := s.Events().ListByCard(ctx, card.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, srs.RatingGood, events[0].Rating)
	require.Equal(t, 3, events[0].IntervalAfter)
}

func TestApplyReviewStaleVersionConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cards := s.Cards()

	card := testCard("l1", "i1")
	require.NoError(t, cards.Create(ctx, card))

	first := card.Clone()
	first.IntervalDays = 1
	require.NoError(t, cards.ApplyReview(ctx, first, 1, &ReviewEvent{
		ID: uuid.NewString(), CardID: card.ID, Rating: srs.RatingGood, Retained: true,
	}))

	// A second writer still holding version 1 must lose.
	stale := card.Clone()
	stale.IntervalDays = 7
	err := cards.ApplyReview(ctx, stale, 1, &ReviewEvent{
		ID: uuid.NewString(), CardID: card.ID, Rating: srs.RatingEasy, Retained: true,
	})
	require.ErrorIs(t, err, ErrConflict)

	// The losing event must not be recorded.
	events, err := s.Events().ListByCard(ctx, card.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestCardUpdateCAS(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cards := s.Cards()

	card := testCard("l1", "i1")
	require.NoError(t, cards.Create(ctx, card))

	migrated := card.Clone()
	migrated.Algorithm = srs.AlgorithmMemory
	migrated.Stability = 4
	require.NoError(t, cards.Update(ctx, migrated, 1))

	require.ErrorIs(t, cards.Update(ctx, card.Clone(), 1), ErrConflict)

	got, err := cards.Get(ctx, card.ID)
	require.NoError(t, err)
	require.Equal(t, srs.AlgorithmMemory, got.Algorithm)
}

func TestItemRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	items := s.Items()

	item := &adaptive.Item{
		ID:           "i1",
		ConceptID:    "c1",
		Question:     "Which word means 'house'?",
		Options:      []string{"casa", "mesa", "silla", "puerta"},
		CorrectIndex: 0,
		Explanation:  "casa is Spanish for house",
	}
	require.NoError(t, items.Create(ctx, item))

	got, err := items.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, item.Options, got.Options)
	require.Equal(t, 0, got.CorrectIndex)

	byConcept, err := items.ListByConcept(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byConcept, 1)

	_, err = items.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStatsDefaultAndUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	stats := s.Stats()

	fresh, err := stats.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, 0, fresh.Attempts)
	require.Equal(t, 0.5, fresh.Difficulty)

	fresh.Attempts = 12
	fresh.Correct = 7
	fresh.Difficulty = 0.42
	fresh.OptionCounts = []int{7, 3, 2, 0}
	require.NoError(t, stats.Upsert(ctx, fresh))

	got, err := stats.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, 12, got.Attempts)
	require.Equal(t, []int{7, 3, 2, 0}, got.OptionCounts)
}

func TestRecentAttemptsWindow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	stats := s.Stats()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		att := itemstats.Attempt{Ability: float64(i) / 10, Correct: i%2 == 0}
		require.NoError(t, stats.AddAttempt(ctx, "i1", att, base.Add(time.Duration(i)*time.Minute)))
	}

	got, err := stats.RecentAttempts(ctx, "i1", 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	// Most recent first.
	require.Equal(t, 0.5, got[0].Ability)
	require.Equal(t, 0.2, got[3].Ability)
}

func TestAttemptHistoryPruned(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	stats := s.Stats()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < attemptRetention+20; i++ {
		att := itemstats.Attempt{Ability: 0.5, Correct: true}
		require.NoError(t, stats.AddAttempt(ctx, "i1", att, base.Add(time.Duration(i)*time.Second)))
	}

	var count int
	require.NoError(t, s.DB().Get(&count, `SELECT COUNT(*) FROM item_attempts WHERE item_id = 'i1'`))
	require.Equal(t, attemptRetention, count)
}

func TestListFlagged(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	stats := s.Stats()

	require.NoError(t, stats.Upsert(ctx, &itemstats.Stats{ItemID: "ok", Attempts: 30, Difficulty: 0.5}))
	require.NoError(t, stats.Upsert(ctx, &itemstats.Stats{
		ItemID: "bad", Attempts: 30, Difficulty: 0.9, Flagged: true, FlagReason: "too_hard",
	}))

	flagged, err := stats.ListFlagged(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, "bad", flagged[0].ItemID)
	require.Equal(t, "too_hard", flagged[0].FlagReason)
}

func TestAbilityDefaultAndUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	abilities := s.Abilities()

	fresh, err := abilities.Get(ctx, "l1", "c1")
	require.NoError(t, err)
	require.Equal(t, adaptive.DefaultAbility, fresh.Ability)
	require.Equal(t, 0, fresh.Attempts)

	fresh.Record(true)
	require.NoError(t, abilities.Upsert(ctx, fresh))

	got, err := abilities.Get(ctx, "l1", "c1")
	require.NoError(t, err)
	require.Equal(t, 0.55, got.Ability)
	require.Equal(t, 1, got.Attempts)
}

func TestAssignmentLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	assignments := s.Assignments()

	_, err := assignments.Get(ctx, "l1")
	require.ErrorIs(t, err, ErrNotFound)

	a := &Assignment{LearnerID: "l1", Algorithm: srs.AlgorithmSM2, Reason: "random"}
	require.NoError(t, assignments.Upsert(ctx, a))

	require.NoError(t, assignments.IncrementReviews(ctx, "l1"))
	require.NoError(t, assignments.IncrementReviews(ctx, "l1"))

	got, err := assignments.Get(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, srs.AlgorithmSM2, got.Algorithm)
	require.Equal(t, 2, got.ReviewCount)
	require.True(t, got.MigratedAt.IsZero())

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got.Algorithm = srs.AlgorithmMemory
	got.Reason = "migrated"
	got.MigratedAt = now
	require.NoError(t, assignments.Upsert(ctx, got))

	after, err := assignments.Get(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, srs.AlgorithmMemory, after.Algorithm)
	require.Equal(t, now, after.MigratedAt)
	require.Equal(t, 2, after.ReviewCount)
}
