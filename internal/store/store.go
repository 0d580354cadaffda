// Package store persists review records per competitor.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-intel/internal/model"
)

// ErrNoContent is returned when a record without any extracted field is inserted.
var ErrNoContent = eris.New("store: record has no content")

// Writer appends review records. Each call stores exactly one record.
type Writer interface {
	InsertReview(ctx context.Context, competitorID string, rec model.ReviewRecord) error
}

// Reader returns every stored record for a competitor, oldest first.
type Reader interface {
	ListReviews(ctx context.Context, competitorID string) ([]model.ReviewRecord, error)
}

// Store is the full persistence surface used by the CLI and server.
type Store interface {
	Writer
	Reader
	CountReviews(ctx context.Context, competitorID string) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// validate rejects records that must never be persisted.
func validate(competitorID string, rec model.ReviewRecord) error {
	if competitorID == "" {
		return eris.New("store: competitor id is required")
	}
	if !rec.HasContent() {
		return ErrNoContent
	}
	return nil
}
