package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/srs"
)

type eventRecord struct {
	ID               string  `db:"id"`
	CardID           string  `db:"card_id"`
	Rating           int     `db:"rating"`
	LatencyMs        int64   `db:"latency_ms"`
	ElapsedDays      float64 `db:"elapsed_days"`
	Retained         bool    `db:"retained"`
	IntervalBefore   int     `db:"interval_before"`
	IntervalAfter    int     `db:"interval_after"`
	EaseBefore       float64 `db:"ease_before"`
	EaseAfter        float64 `db:"ease_after"`
	StabilityBefore  float64 `db:"stability_before"`
	StabilityAfter   float64 `db:"stability_after"`
	DifficultyBefore float64 `db:"difficulty_before"`
	DifficultyAfter  float64 `db:"difficulty_after"`
	CreatedAt        int64   `db:"created_at"`
}

func insertEvent(ctx context.Context, ext sqlx.ExtContext, ev *ReviewEvent) error {
	rec := eventRecord{
		ID:               ev.ID,
		CardID:           ev.CardID,
		Rating:           int(ev.Rating),
		LatencyMs:        ev.LatencyMs,
		ElapsedDays:      ev.ElapsedDays,
		Retained:         ev.Retained,
		IntervalBefore:   ev.IntervalBefore,
		IntervalAfter:    ev.IntervalAfter,
		EaseBefore:       ev.EaseBefore,
		EaseAfter:        ev.EaseAfter,
		StabilityBefore:  ev.StabilityBefore,
		StabilityAfter:   ev.StabilityAfter,
		DifficultyBefore: ev.DifficultyBefore,
		DifficultyAfter:  ev.DifficultyAfter,
		CreatedAt:        ev.CreatedAt.Unix(),
	}
	if rec.CreatedAt <= 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	_, err := sqlx.NamedExecContext(ctx, ext, `
		INSERT INTO review_events (id, card_id, rating, latency_ms, elapsed_days, retained,
			interval_before, interval_after, ease_before, ease_after,
			stability_before, stability_after, difficulty_before, difficulty_after, created_at)
		VALUES (:id, :card_id, :rating, :latency_ms, :elapsed_days, :retained,
			:interval_before, :interval_after, :ease_before, :ease_after,
			:stability_before, :stability_after, :difficulty_before, :difficulty_after, :created_at)`, rec)
	return errors.Wrap(err, "insert review event")
}

type eventRepo struct {
	db *sqlx.DB
}

func (r *eventRepo) ListByCard(ctx context.Context, cardID string, limit int) ([]*ReviewEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var recs []eventRecord
	err := r.db.SelectContext(ctx, &recs, `
		SELECT id, card_id, rating, latency_ms, elapsed_days, retained,
			interval_before, interval_after, ease_before, ease_after,
			stability_before, stability_after, difficulty_before, difficulty_after, created_at
		FROM review_events
		WHERE card_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, cardID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list review events")
	}

	events := make([]*ReviewEvent, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		events = append(events, &ReviewEvent{
			ID:               rec.ID,
			CardID:           rec.CardID,
			Rating:           srs.Rating(rec.Rating),
			LatencyMs:        rec.LatencyMs,
			ElapsedDays:      rec.ElapsedDays,
			Retained:         rec.Retained,
			IntervalBefore:   rec.IntervalBefore,
			IntervalAfter:    rec.IntervalAfter,
			EaseBefore:       rec.EaseBefore,
			EaseAfter:        rec.EaseAfter,
			StabilityBefore:  rec.StabilityBefore,
			StabilityAfter:   rec.StabilityAfter,
			DifficultyBefore: rec.DifficultyBefore,
			DifficultyAfter:  rec.DifficultyAfter,
			CreatedAt:        time.Unix(rec.CreatedAt, 0).UTC(),
		})
	}
	return events, nil
}
