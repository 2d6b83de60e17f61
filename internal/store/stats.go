package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/itemstats"
)

type statsRecord struct {
	ItemID         string  `db:"item_id"`
	Attempts       int     `db:"attempts"`
	Correct        int     `db:"correct"`
	Difficulty     float64 `db:"difficulty"`
	Discrimination float64 `db:"discrimination"`
	OptionCounts   string  `db:"option_counts"`
	Flagged        bool    `db:"flagged"`
	FlagReason     string  `db:"flag_reason"`
	UpdatedAt      int64   `db:"updated_at"`
}

func recordToStats(r *statsRecord) (*itemstats.Stats, error) {
	var counts []int
	if err := json.Unmarshal([]byte(r.OptionCounts), &counts); err != nil {
		return nil, errors.Wrapf(err, "decode option counts for item %s", r.ItemID)
	}
	return &itemstats.Stats{
		ItemID:         r.ItemID,
		Attempts:       r.Attempts,
		Correct:        r.Correct,
		Difficulty:     r.Difficulty,
		Discrimination: r.Discrimination,
		OptionCounts:   counts,
		Flagged:        r.Flagged,
		FlagReason:     r.FlagReason,
	}, nil
}

type statsRepo struct {
	db *sqlx.DB
}

const statsColumns = `item_id, attempts, correct, difficulty, discrimination, option_counts, flagged, flag_reason, updated_at`

func (r *statsRepo) Get(ctx context.Context, itemID string) (*itemstats.Stats, error) {
	var rec statsRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT `+statsColumns+` FROM item_stats WHERE item_id = ?`, itemID)
	if err == sql.ErrNoRows {
		return &itemstats.Stats{ItemID: itemID, Difficulty: 0.5}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get item stats")
	}
	return recordToStats(&rec)
}

func (r *statsRepo) Upsert(ctx context.Context, stats *itemstats.Stats) error {
	counts, err := json.Marshal(stats.OptionCounts)
	if err != nil {
		return errors.Wrap(err, "encode option counts")
	}
	if stats.OptionCounts == nil {
		counts = []byte("[]")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO item_stats (`+statsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			attempts = excluded.attempts,
			correct = excluded.correct,
			difficulty = excluded.difficulty,
			discrimination = excluded.discrimination,
			option_counts = excluded.option_counts,
			flagged = excluded.flagged,
			flag_reason = excluded.flag_reason,
			updated_at = excluded.updated_at`,
		stats.ItemID, stats.Attempts, stats.Correct, stats.Difficulty, stats.Discrimination,
		string(counts), stats.Flagged, stats.FlagReason, time.Now().Unix())
	return errors.Wrap(err, "upsert item stats")
}

// attemptRetention bounds the per-item attempt history; only a recent
// window feeds discrimination, so older rows are dead weight.
const attemptRetention = 100

func (r *statsRepo) AddAttempt(ctx context.Context, itemID string, attempt itemstats.Attempt, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_attempts (item_id, ability, correct, created_at)
		VALUES (?, ?, ?, ?)`, itemID, attempt.Ability, attempt.Correct, at.Unix())
	if err != nil {
		return errors.Wrap(err, "add item attempt")
	}
	_, err = r.db.ExecContext(ctx, `
		DELETE FROM item_attempts
		WHERE item_id = ? AND id NOT IN (
			SELECT id FROM item_attempts WHERE item_id = ? ORDER BY id DESC LIMIT ?
		)`, itemID, itemID, attemptRetention)
	return errors.Wrap(err, "prune item attempts")
}

func (r *statsRepo) RecentAttempts(ctx context.Context, itemID string, limit int) ([]itemstats.Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryxContext(ctx, `
		SELECT ability, correct FROM item_attempts
		WHERE item_id = ?
		ORDER BY id DESC
		LIMIT ?`, itemID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "recent attempts")
	}
	defer rows.Close()

	var attempts []itemstats.Attempt
	for rows.Next() {
		var a itemstats.Attempt
		if err := rows.Scan(&a.Ability, &a.Correct); err != nil {
			return nil, errors.Wrap(err, "scan attempt")
		}
		attempts = append(attempts, a)
	}
	return attempts, errors.Wrap(rows.Err(), "iterate attempts")
}

func (r *statsRepo) ListFlagged(ctx context.Context) ([]*itemstats.Stats, error) {
	var recs []statsRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT `+statsColumns+` FROM item_stats WHERE flagged = 1 ORDER BY item_id`)
	if err != nil {
		return nil, errors.Wrap(err, "list flagged items")
	}
	out := make([]*itemstats.Stats, 0, len(recs))
	for i := range recs {
		s, err := recordToStats(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
