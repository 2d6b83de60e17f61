package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/adaptive"
)

type abilityRepo struct {
	db *sqlx.DB
}

func (r *abilityRepo) Get(ctx context.Context, learnerID, conceptID string) (*adaptive.Estimate, error) {
	est := adaptive.Estimate{LearnerID: learnerID, ConceptID: conceptID}
	err := r.db.QueryRowxContext(ctx, `
		SELECT ability, attempts FROM abilities
		WHERE learner_id = ? AND concept_id = ?`, learnerID, conceptID).
		Scan(&est.Ability, &est.Attempts)
	if err == sql.ErrNoRows {
		est.Ability = adaptive.DefaultAbility
		return &est, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get ability")
	}
	return &est, nil
}

func (r *abilityRepo) Upsert(ctx context.Context, est *adaptive.Estimate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO abilities (learner_id, concept_id, ability, attempts, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, concept_id) DO UPDATE SET
			ability = excluded.ability,
			attempts = excluded.attempts,
			updated_at = excluded.updated_at`,
		est.LearnerID, est.ConceptID, est.Ability, est.Attempts, time.Now().Unix())
	return errors.Wrap(err, "upsert ability")
}
