package store

import (
	"context"
	"time"

	"github.com/vocardo/vocardo/internal/adaptive"
	"github.com/vocardo/vocardo/internal/itemstats"
	"github.com/vocardo/vocardo/internal/srs"
)

// ReviewEvent is one entry of the append-only review history. Events
// are immutable once written; corrective writes are new events.
type ReviewEvent struct {
	ID          string
	CardID      string
	Rating      srs.Rating
	LatencyMs   int64
	ElapsedDays float64
	Retained    bool

	IntervalBefore   int
	IntervalAfter    int
	EaseBefore       float64
	EaseAfter        float64
	StabilityBefore  float64
	StabilityAfter   float64
	DifficultyBefore float64
	DifficultyAfter  float64

	CreatedAt time.Time
}

// Assignment records which algorithm a learner uses.
type Assignment struct {
	LearnerID   string
	Algorithm   srs.Algorithm
	Reason      string // "random", "manual", or "migrated"
	ReviewCount int
	MigratedAt  time.Time // zero until migrated
}

// CardRepo manages card state with per-card optimistic concurrency.
type CardRepo interface {
	Create(ctx context.Context, card *srs.CardState) error

	Get(ctx context.Context, cardID string) (*srs.CardState, error)
	GetByLearnerItem(ctx context.Context, learnerID, itemID string) (*srs.CardState, error)
	ListByLearner(ctx context.Context, learnerID string) ([]*srs.CardState, error)

	// ListScheduled returns the learner's cards with a scheduled date
	// at or before the given time.
	ListScheduled(ctx context.Context, learnerID string, before time.Time) ([]*srs.CardState, error)

	// ApplyReview commits the reviewed card state and its history
	// event in one transaction, guarded by the version the caller
	// read. Returns ErrConflict if the card changed concurrently.
	ApplyReview(ctx context.Context, card *srs.CardState, expectedVersion int64, event *ReviewEvent) error

	// Update commits a card state change (e.g. migration) guarded by
	// the version the caller read.
	Update(ctx context.Context, card *srs.CardState, expectedVersion int64) error
}

// ReviewEventRepo reads the append-only history. Appends happen only
// through CardRepo.ApplyReview so a review commits atomically.
type ReviewEventRepo interface {
	ListByCard(ctx context.Context, cardID string, limit int) ([]*ReviewEvent, error)
}

// ItemRepo reads content-pipeline items. The engine never modifies
// them; Create exists for ingestion and tests.
type ItemRepo interface {
	Create(ctx context.Context, item *adaptive.Item) error
	Get(ctx context.Context, itemID string) (*adaptive.Item, error)
	ListByConcept(ctx context.Context, conceptID string) ([]*adaptive.Item, error)
}

// StatsRepo manages the per-item statistics sidecar and the recent
// attempt window that backs discrimination.
type StatsRepo interface {
	// Get returns the stats for an item, zero-valued if none exist.
	Get(ctx context.Context, itemID string) (*itemstats.Stats, error)
	Upsert(ctx context.Context, stats *itemstats.Stats) error

	AddAttempt(ctx context.Context, itemID string, attempt itemstats.Attempt, at time.Time) error
	RecentAttempts(ctx context.Context, itemID string, limit int) ([]itemstats.Attempt, error)

	ListFlagged(ctx context.Context) ([]*itemstats.Stats, error)
}

// AbilityRepo manages per-(learner, concept) ability estimates.
type AbilityRepo interface {
	// Get returns the estimate, or a fresh neutral one if none exists.
	Get(ctx context.Context, learnerID, conceptID string) (*adaptive.Estimate, error)
	Upsert(ctx context.Context, est *adaptive.Estimate) error
}

// AssignmentRepo manages per-learner algorithm assignments.
type AssignmentRepo interface {
	Get(ctx context.Context, learnerID string) (*Assignment, error)
	Upsert(ctx context.Context, a *Assignment) error
	IncrementReviews(ctx context.Context, learnerID string) error
}
