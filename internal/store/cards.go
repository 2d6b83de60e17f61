package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/srs"
)

// cardRecord is the persistence shape of a card.
type cardRecord struct {
	ID                 string  `db:"id"`
	LearnerID          string  `db:"learner_id"`
	ItemID             string  `db:"item_id"`
	Algorithm          string  `db:"algorithm"`
	ScheduledAt        int64   `db:"scheduled_at"`
	LastReviewAt       int64   `db:"last_review_at"`
	IntervalDays       int     `db:"interval_days"`
	EaseFactor         float64 `db:"ease_factor"`
	ConsecutiveCorrect int     `db:"consecutive_correct"`
	ConsecutiveLapses  int     `db:"consecutive_lapses"`
	Stability          float64 `db:"stability"`
	Difficulty         float64 `db:"difficulty"`
	MemorySnapshot     []byte  `db:"memory_snapshot"`
	Mastery            string  `db:"mastery"`
	IsLeech            bool    `db:"is_leech"`
	TotalReviews       int     `db:"total_reviews"`
	TotalCorrect       int     `db:"total_correct"`
	Version            int64   `db:"version"`
	CreatedAt          int64   `db:"created_at"`
	UpdatedAt          int64   `db:"updated_at"`
}

func cardToRecord(c *srs.CardState) (*cardRecord, error) {
	snap, err := srs.MarshalSnapshot(c.Memory)
	if err != nil {
		return nil, err
	}
	return &cardRecord{
		ID:                 c.ID,
		LearnerID:          c.LearnerID,
		ItemID:             c.ItemID,
		Algorithm:          string(c.Algorithm),
		ScheduledAt:        c.ScheduledAt.Unix(),
		LastReviewAt:       unixOrZero(c.LastReviewAt),
		IntervalDays:       c.IntervalDays,
		EaseFactor:         c.EaseFactor,
		ConsecutiveCorrect: c.ConsecutiveCorrect,
		ConsecutiveLapses:  c.ConsecutiveLapses,
		Stability:          c.Stability,
		Difficulty:         c.Difficulty,
		MemorySnapshot:     snap,
		Mastery:            c.MasteryLevel,
		IsLeech:            c.IsLeech,
		TotalReviews:       c.TotalReviews,
		TotalCorrect:       c.TotalCorrect,
		Version:            c.Version,
	}, nil
}

func recordToCard(r *cardRecord) (*srs.CardState, error) {
	snap, err := srs.UnmarshalSnapshot(r.MemorySnapshot)
	if err != nil {
		return nil, err
	}
	return &srs.CardState{
		ID:                 r.ID,
		LearnerID:          r.LearnerID,
		ItemID:             r.ItemID,
		Algorithm:          srs.Algorithm(r.Algorithm),
		ScheduledAt:        time.Unix(r.ScheduledAt, 0).UTC(),
		LastReviewAt:       timeOrZero(r.LastReviewAt),
		IntervalDays:       r.IntervalDays,
		EaseFactor:         r.EaseFactor,
		ConsecutiveCorrect: r.ConsecutiveCorrect,
		ConsecutiveLapses:  r.ConsecutiveLapses,
		Stability:          r.Stability,
		Difficulty:         r.Difficulty,
		Memory:             snap,
		MasteryLevel:       r.Mastery,
		IsLeech:            r.IsLeech,
		TotalReviews:       r.TotalReviews,
		TotalCorrect:       r.TotalCorrect,
		Version:            r.Version,
	}, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

type cardRepo struct {
	db *sqlx.DB
}

const cardColumns = `id, learner_id, item_id, algorithm, scheduled_at, last_review_at,
	interval_days, ease_factor, consecutive_correct, consecutive_lapses,
	stability, difficulty, memory_snapshot, mastery, is_leech,
	total_reviews, total_correct, version, created_at, updated_at`

func (r *cardRepo) Create(ctx context.Context, card *srs.CardState) error {
	rec, err := cardToRecord(card)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.Version = 1
	card.Version = 1

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (:id, :learner_id, :item_id, :algorithm, :scheduled_at, :last_review_at,
			:interval_days, :ease_factor, :consecutive_correct, :consecutive_lapses,
			:stability, :difficulty, :memory_snapshot, :mastery, :is_leech,
			:total_reviews, :total_correct, :version, :created_at, :updated_at)`, rec)
	return errors.Wrap(err, "create card")
}

func (r *cardRepo) Get(ctx context.Context, cardID string) (*srs.CardState, error) {
	var rec cardRecord
	err := r.db.GetContext(ctx, &rec, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, cardID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get card")
	}
	return recordToCard(&rec)
}

func (r *cardRepo) GetByLearnerItem(ctx context.Context, learnerID, itemID string) (*srs.CardState, error) {
	var rec cardRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT `+cardColumns+` FROM cards WHERE learner_id = ? AND item_id = ?`, learnerID, itemID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get card by learner-item")
	}
	return recordToCard(&rec)
}

func (r *cardRepo) ListByLearner(ctx context.Context, learnerID string) ([]*srs.CardState, error) {
	var recs []cardRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT `+cardColumns+` FROM cards WHERE learner_id = ? ORDER BY scheduled_at`, learnerID)
	if err != nil {
		return nil, errors.Wrap(err, "list cards")
	}
	return recordsToCards(recs)
}

func (r *cardRepo) ListScheduled(ctx context.Context, learnerID string, before time.Time) ([]*srs.CardState, error) {
	var recs []cardRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT `+cardColumns+` FROM cards
		 WHERE learner_id = ? AND scheduled_at <= ?
		 ORDER BY scheduled_at`, learnerID, before.Unix())
	if err != nil {
		return nil, errors.Wrap(err, "list scheduled cards")
	}
	return recordsToCards(recs)
}

func recordsToCards(recs []cardRecord) ([]*srs.CardState, error) {
	cards := make([]*srs.CardState, 0, len(recs))
	for i := range recs {
		c, err := recordToCard(&recs[i])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

const cardUpdateSet = `
	algorithm = :algorithm,
	scheduled_at = :scheduled_at,
	last_review_at = :last_review_at,
	interval_days = :interval_days,
	ease_factor = :ease_factor,
	consecutive_correct = :consecutive_correct,
	consecutive_lapses = :consecutive_lapses,
	stability = :stability,
	difficulty = :difficulty,
	memory_snapshot = :memory_snapshot,
	mastery = :mastery,
	is_leech = :is_leech,
	total_reviews = :total_reviews,
	total_correct = :total_correct,
	version = :expected_version + 1,
	updated_at = :updated_at`

// updateCAS runs the guarded card update on the given executor and
// reports whether the guard matched.
func updateCAS(ctx context.Context, ext sqlx.ExtContext, card *srs.CardState, expectedVersion int64) (bool, error) {
	rec, err := cardToRecord(card)
	if err != nil {
		return false, err
	}
	args := map[string]any{
		"id":                  rec.ID,
		"algorithm":           rec.Algorithm,
		"scheduled_at":        rec.ScheduledAt,
		"last_review_at":      rec.LastReviewAt,
		"interval_days":       rec.IntervalDays,
		"ease_factor":         rec.EaseFactor,
		"consecutive_correct": rec.ConsecutiveCorrect,
		"consecutive_lapses":  rec.ConsecutiveLapses,
		"stability":           rec.Stability,
		"difficulty":          rec.Difficulty,
		"memory_snapshot":     rec.MemorySnapshot,
		"mastery":             rec.Mastery,
		"is_leech":            rec.IsLeech,
		"total_reviews":       rec.TotalReviews,
		"total_correct":       rec.TotalCorrect,
		"expected_version":    expectedVersion,
		"updated_at":          time.Now().Unix(),
	}
	res, err := sqlx.NamedExecContext(ctx, ext,
		`UPDATE cards SET `+cardUpdateSet+` WHERE id = :id AND version = :expected_version`, args)
	if err != nil {
		return false, errors.Wrap(err, "update card")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n == 1, nil
}

func (r *cardRepo) Update(ctx context.Context, card *srs.CardState, expectedVersion int64) error {
	ok, err := updateCAS(ctx, r.db, card, expectedVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	card.Version = expectedVersion + 1
	return nil
}

func (r *cardRepo) ApplyReview(ctx context.Context, card *srs.CardState, expectedVersion int64, event *ReviewEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin review tx")
	}
	defer tx.Rollback()

	ok, err := updateCAS(ctx, tx, card, expectedVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit review tx")
	}
	card.Version = expectedVersion + 1
	return nil
}
