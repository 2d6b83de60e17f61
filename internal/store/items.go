package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/adaptive"
)

type itemRecord struct {
	ID           string `db:"id"`
	ConceptID    string `db:"concept_id"`
	Question     string `db:"question"`
	Options      string `db:"options"`
	CorrectIndex int    `db:"correct_index"`
	Explanation  string `db:"explanation"`
}

func recordToItem(r *itemRecord) (*adaptive.Item, error) {
	var options []string
	if err := json.Unmarshal([]byte(r.Options), &options); err != nil {
		return nil, errors.Wrapf(err, "decode options for item %s", r.ID)
	}
	return &adaptive.Item{
		ID:           r.ID,
		ConceptID:    r.ConceptID,
		Question:     r.Question,
		Options:      options,
		CorrectIndex: r.CorrectIndex,
		Explanation:  r.Explanation,
	}, nil
}

type itemRepo struct {
	db *sqlx.DB
}

func (r *itemRepo) Create(ctx context.Context, item *adaptive.Item) error {
	options, err := json.Marshal(item.Options)
	if err != nil {
		return errors.Wrap(err, "encode options")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO items (id, concept_id, question, options, correct_index, explanation)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.ConceptID, item.Question, string(options), item.CorrectIndex, item.Explanation)
	return errors.Wrap(err, "create item")
}

func (r *itemRepo) Get(ctx context.Context, itemID string) (*adaptive.Item, error) {
	var rec itemRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT id, concept_id, question, options, correct_index, explanation
		FROM items WHERE id = ?`, itemID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get item")
	}
	return recordToItem(&rec)
}

func (r *itemRepo) ListByConcept(ctx context.Context, conceptID string) ([]*adaptive.Item, error) {
	var recs []itemRecord
	err := r.db.SelectContext(ctx, &recs, `
		SELECT id, concept_id, question, options, correct_index, explanation
		FROM items WHERE concept_id = ? ORDER BY id`, conceptID)
	if err != nil {
		return nil, errors.Wrap(err, "list items by concept")
	}
	items := make([]*adaptive.Item, 0, len(recs))
	for i := range recs {
		item, err := recordToItem(&recs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
