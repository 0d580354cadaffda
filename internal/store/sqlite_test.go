package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-intel/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_InsertAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := model.ReviewRecord{
		Rating:       model.Float64Ptr(4),
		ReviewerName: model.StringPtr("Jane Doe"),
		ReviewText:   model.StringPtr("Great food, slow service"),
		ReviewDate:   model.StringPtr("2 months ago"),
		Source:       model.SourceGoogleMaps,
		RawCapture:   "Jane Doe\n4 stars\nGreat food, slow service\n2 months ago",
	}
	second := model.ReviewRecord{
		ReviewText: model.StringPtr("Only text"),
		Source:     model.SourceGoogleMaps,
	}
	require.NoError(t, st.InsertReview(ctx, "acme", first))
	require.NoError(t, st.InsertReview(ctx, "acme", second))
	require.NoError(t, st.InsertReview(ctx, "other", second))

	got, err := st.ListReviews(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, "acme", got[0].CompetitorID)
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.0, *got[0].Rating, 1e-9)
	assert.Equal(t, "Jane Doe", *got[0].ReviewerName)
	assert.Equal(t, first.RawCapture, got[0].RawCapture)
	assert.False(t, got[0].CreatedAt.IsZero())

	assert.Nil(t, got[1].Rating)
	assert.Nil(t, got[1].ReviewerName)
	assert.Nil(t, got[1].ReviewDate)
	assert.Equal(t, "Only text", *got[1].ReviewText)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	n, err := st.CountReviews(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLite_ListUnknownCompetitor(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.ListReviews(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_RejectsEmptyRecord(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.InsertReview(ctx, "acme", model.ReviewRecord{Source: model.SourceGoogleMaps, RawCapture: "noise"})
	assert.True(t, errors.Is(err, ErrNoContent))

	err = st.InsertReview(ctx, "", model.ReviewRecord{ReviewText: model.StringPtr("x")})
	assert.Error(t, err)

	n, err := st.CountReviews(ctx, "acme")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "open.db"), nil)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.InsertReview(context.Background(), "acme", model.ReviewRecord{ReviewDate: model.StringPtr("a day ago")}))
	n, err := st.CountReviews(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
