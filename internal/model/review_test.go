package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRecord_HasContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  ReviewRecord
		want bool
	}{
		{"empty", ReviewRecord{Source: SourceGoogleMaps, RawCapture: "noise"}, false},
		{"rating only", ReviewRecord{Rating: Float64Ptr(4)}, true},
		{"name only", ReviewRecord{ReviewerName: StringPtr("Jane")}, true},
		{"text only", ReviewRecord{ReviewText: StringPtr("Great")}, true},
		{"date only", ReviewRecord{ReviewDate: StringPtr("2 months ago")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rec.HasContent())
		})
	}
}

func TestReviewRecord_RatingInRange(t *testing.T) {
	t.Parallel()

	assert.False(t, ReviewRecord{}.RatingInRange())
	assert.False(t, ReviewRecord{Rating: Float64Ptr(0)}.RatingInRange())
	assert.False(t, ReviewRecord{Rating: Float64Ptr(5.5)}.RatingInRange())
	assert.True(t, ReviewRecord{Rating: Float64Ptr(1)}.RatingInRange())
	assert.True(t, ReviewRecord{Rating: Float64Ptr(5)}.RatingInRange())
}

func TestStringPtr_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, StringPtr(""))
	require.NotNil(t, StringPtr("x"))
	assert.Equal(t, "x", *StringPtr("x"))
}

func TestReviewRecord_JSONNulls(t *testing.T) {
	t.Parallel()

	rec := ReviewRecord{ReviewerName: StringPtr("Jane Doe"), Source: SourceGoogleMaps}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Nil(t, m["rating"])
	assert.Equal(t, "Jane Doe", m["reviewer_name"])
	assert.Equal(t, "google_maps", m["source"])
}

func TestNewCompetitorAnalysis_ZeroFilled(t *testing.T) {
	t.Parallel()

	a := NewCompetitorAnalysis("acme")
	assert.Equal(t, "acme", a.CompetitorID)
	assert.Nil(t, a.AvgRating)
	assert.Len(t, a.RatingDistribution, 5)
	for _, b := range RatingBuckets {
		assert.Equal(t, 0, a.RatingDistribution[b])
	}
	assert.NotNil(t, a.TopKeywords)
	assert.Empty(t, a.TopPositiveSnippets)
	assert.Empty(t, a.TopNegativeSnippets)
}
