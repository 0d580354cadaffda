package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/review-intel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reviews (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL,
	rating        REAL,
	reviewer_name TEXT,
	review_text   TEXT,
	review_date   TEXT,
	source        TEXT NOT NULL,
	raw_capture   TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reviews_competitor_id ON reviews(competitor_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertReview(ctx context.Context, competitorID string, rec model.ReviewRecord) error {
	if err := validate(competitorID, rec); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, competitor_id, rating, reviewer_name, review_text, review_date, source, raw_capture, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), competitorID,
		nullFloat(rec.Rating), nullString(rec.ReviewerName), nullString(rec.ReviewText), nullString(rec.ReviewDate),
		rec.Source, rec.RawCapture, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert review for %s", competitorID)
}

func (s *SQLiteStore) ListReviews(ctx context.Context, competitorID string) ([]model.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competitor_id, rating, reviewer_name, review_text, review_date, source, raw_capture, created_at
		 FROM reviews WHERE competitor_id = ? ORDER BY rowid`,
		competitorID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list reviews for %s", competitorID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ReviewRecord
	for rows.Next() {
		rec, err := scanReview(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate reviews")
}

func (s *SQLiteStore) CountReviews(ctx context.Context, competitorID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE competitor_id = ?`, competitorID,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count reviews for %s", competitorID)
	}
	return n, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReview(row scannable) (model.ReviewRecord, error) {
	var (
		rec    model.ReviewRecord
		rating sql.NullFloat64
		name   sql.NullString
		text   sql.NullString
		date   sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.CompetitorID, &rating, &name, &text, &date, &rec.Source, &rec.RawCapture, &rec.CreatedAt); err != nil {
		return rec, err
	}
	if rating.Valid {
		rec.Rating = model.Float64Ptr(rating.Float64)
	}
	if name.Valid {
		rec.ReviewerName = &name.String
	}
	if text.Valid {
		rec.ReviewText = &text.String
	}
	if date.Valid {
		rec.ReviewDate = &date.String
	}
	return rec, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
