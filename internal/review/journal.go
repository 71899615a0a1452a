package review

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a publish attempt.
type Status string

const (
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Entry records one completed conversation for operator recovery.
type Entry struct {
	ID         uuid.UUID `db:"id"`
	UserID     int64     `db:"user_id"`
	Product    string    `db:"product"`
	Rating     int       `db:"rating"`
	ReviewText string    `db:"review_text"`
	Category   Category  `db:"category"`
	Status     Status    `db:"status"`
	Error      string    `db:"error"`
	CreatedAt  time.Time `db:"created_at"`
}

// NewEntry builds the journal entry for a publish attempt that ended with err.
func NewEntry(userID int64, d Draft, err error, now time.Time) Entry {
	e := Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Product:    d.Product,
		Rating:     d.Rating,
		ReviewText: d.ReviewText,
		Category:   d.Category,
		Status:     StatusPublished,
		CreatedAt:  now.UTC(),
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	return e
}

// Journal persists publish outcomes.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Counts(ctx context.Context) (map[Status]int, error)
}
