// Package storage keeps the review journal in Postgres.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/reviewbot/internal/review"
)

const (
	insertEntry = `INSERT INTO review_journal
	(id, user_id, product, rating, review_text, category, status, error, created_at)
	VALUES (:id, :user_id, :product, :rating, :review_text, :category, :status, :error, :created_at)`

	countByStatus = `SELECT status, COUNT(*) AS n FROM review_journal GROUP BY status`
)

// Journal implements review.Journal on a sqlx handle.
type Journal struct {
	db *sqlx.DB
}

// NewJournal wraps db.
func NewJournal(db *sqlx.DB) *Journal {
	return &Journal{db: db}
}

var _ review.Journal = (*Journal)(nil)

// Record inserts one entry.
func (j *Journal) Record(ctx context.Context, e review.Entry) error {
	if _, err := j.db.NamedExecContext(ctx, insertEntry, e); err != nil {
		return fmt.Errorf("storage: record %s: %w", e.ID, err)
	}
	return nil
}

// Counts returns the number of entries per status.
func (j *Journal) Counts(ctx context.Context) (map[review.Status]int, error) {
	var rows []struct {
		Status review.Status `db:"status"`
		N      int           `db:"n"`
	}
	if err := j.db.SelectContext(ctx, &rows, countByStatus); err != nil {
		return nil, fmt.Errorf("storage: count: %w", err)
	}
	out := make(map[review.Status]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
