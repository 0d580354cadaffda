package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/review-intel/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore.
// pgxmock.PgxPoolIface satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reviews (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL,
	rating        DOUBLE PRECISION,
	reviewer_name TEXT,
	review_text   TEXT,
	review_date   TEXT,
	source        TEXT NOT NULL,
	raw_capture   TEXT NOT NULL DEFAULT '',
	seq           BIGSERIAL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reviews_competitor_id ON reviews(competitor_id, seq);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) InsertReview(ctx context.Context, competitorID string, rec model.ReviewRecord) error {
	if err := validate(competitorID, rec); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reviews (id, competitor_id, rating, reviewer_name, review_text, review_date, source, raw_capture, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), competitorID,
		rec.Rating, rec.ReviewerName, rec.ReviewText, rec.ReviewDate,
		rec.Source, rec.RawCapture, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert review for %s", competitorID)
}

func (s *PostgresStore) ListReviews(ctx context.Context, competitorID string) ([]model.ReviewRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, competitor_id, rating, reviewer_name, review_text, review_date, source, raw_capture, created_at
		 FROM reviews WHERE competitor_id = $1 ORDER BY seq`,
		competitorID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list reviews for %s", competitorID)
	}
	defer rows.Close()

	var out []model.ReviewRecord
	for rows.Next() {
		var rec model.ReviewRecord
		if err := rows.Scan(
			&rec.ID, &rec.CompetitorID, &rec.Rating, &rec.ReviewerName, &rec.ReviewText, &rec.ReviewDate,
			&rec.Source, &rec.RawCapture, &rec.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reviews")
}

func (s *PostgresStore) CountReviews(ctx context.Context, competitorID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE competitor_id = $1`, competitorID,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: count reviews for %s", competitorID)
	}
	return n, nil
}
