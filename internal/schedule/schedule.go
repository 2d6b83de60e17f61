// Package schedule builds the ordered set of cards due for review.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/srs"
	"github.com/vocardo/vocardo/internal/store"
)

// DueCard is one entry of a due set.
type DueCard struct {
	Card        *srs.CardState `json:"card"`
	ConceptID   string         `json:"concept_id"`
	DaysOverdue float64        `json:"days_overdue"`

	// PredictedRetention is the estimated recall probability right now.
	// Only set for memory-model cards.
	PredictedRetention *float64 `json:"predicted_retention,omitempty"`
}

// Scheduler assembles due sets from stored cards.
type Scheduler struct {
	cards  store.CardRepo
	items  store.ItemRepo
	memory *srs.MemoryModel
}

// NewScheduler creates a scheduler. The memory model is used to
// predict retention for cards it governs; the item repository resolves
// each card's owning concept.
func NewScheduler(cards store.CardRepo, items store.ItemRepo, memory *srs.MemoryModel) *Scheduler {
	return &Scheduler{cards: cards, items: items, memory: memory}
}

// DueSet returns the learner's due cards, most urgent first. Cards
// already reviewed today are excluded so a session cannot show the
// same card twice. Ordering is decided over the full due set before
// any limit is applied: most whole days overdue first, ties within a
// day broken by lowest predicted retention, then by earliest scheduled
// date. limit <= 0 means no limit.
func (s *Scheduler) DueSet(ctx context.Context, learnerID string, now time.Time, limit int) ([]DueCard, error) {
	cards, err := s.cards.ListScheduled(ctx, learnerID, now)
	if err != nil {
		return nil, err
	}

	due := make([]DueCard, 0, len(cards))
	for _, c := range cards {
		if c.ReviewedOn(now) {
			continue
		}
		dc := DueCard{Card: c, DaysOverdue: c.DaysOverdue(now)}
		if c.Algorithm == srs.AlgorithmMemory {
			r := s.memory.PredictRetention(c, now)
			dc.PredictedRetention = &r
		}
		due = append(due, dc)
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		// Whole days so retention can still prioritize within a day.
		if da, db := int(a.DaysOverdue), int(b.DaysOverdue); da != db {
			return da > db
		}
		if a.PredictedRetention != nil && b.PredictedRetention != nil &&
			*a.PredictedRetention != *b.PredictedRetention {
			return *a.PredictedRetention < *b.PredictedRetention
		}
		if !a.Card.ScheduledAt.Equal(b.Card.ScheduledAt) {
			return a.Card.ScheduledAt.Before(b.Card.ScheduledAt)
		}
		return a.Card.ID < b.Card.ID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	for i := range due {
		item, err := s.items.Get(ctx, due[i].Card.ItemID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve concept for item %s", due[i].Card.ItemID)
		}
		due[i].ConceptID = item.ConceptID
	}
	return due, nil
}
