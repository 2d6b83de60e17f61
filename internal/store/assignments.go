package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/srs"
)

type assignmentRepo struct {
	db *sqlx.DB
}

func (r *assignmentRepo) Get(ctx context.Context, learnerID string) (*Assignment, error) {
	var (
		a          Assignment
		algorithm  string
		migratedAt int64
	)
	err := r.db.QueryRowxContext(ctx, `
		SELECT learner_id, algorithm, reason, review_count, migrated_at
		FROM assignments WHERE learner_id = ?`, learnerID).
		Scan(&a.LearnerID, &algorithm, &a.Reason, &a.ReviewCount, &migratedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get assignment")
	}
	a.Algorithm = srs.Algorithm(algorithm)
	a.MigratedAt = timeOrZero(migratedAt)
	return &a, nil
}

func (r *assignmentRepo) Upsert(ctx context.Context, a *Assignment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assignments (learner_id, algorithm, reason, review_count, migrated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			algorithm = excluded.algorithm,
			reason = excluded.reason,
			review_count = excluded.review_count,
			migrated_at = excluded.migrated_at`,
		a.LearnerID, string(a.Algorithm), a.Reason, a.ReviewCount,
		unixOrZero(a.MigratedAt), time.Now().Unix())
	return errors.Wrap(err, "upsert assignment")
}

func (r *assignmentRepo) IncrementReviews(ctx context.Context, learnerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE assignments SET review_count = review_count + 1
		WHERE learner_id = ?`, learnerID)
	return errors.Wrap(err, "increment review count")
}
