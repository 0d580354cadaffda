package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/review-intel/internal/analysis"
	"github.com/sells-group/review-intel/internal/model"
)

func sampleAnalysis() *model.CompetitorAnalysis {
	return analysis.Summarize("acme", []model.ReviewRecord{
		{Rating: model.Float64Ptr(5), ReviewText: model.StringPtr("Great pizza and friendly staff")},
		{Rating: model.Float64Ptr(2), ReviewText: model.StringPtr("Terrible service, rude waiter")},
	})
}

func TestWriteAnalysis_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAnalysis(&buf, sampleAnalysis(), "json"))

	var got model.CompetitorAnalysis
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "acme", got.CompetitorID)
	assert.Equal(t, 2, got.TotalReviews)
	require.NotNil(t, got.AvgRating)
	assert.InDelta(t, 3.5, *got.AvgRating, 1e-9)
}

func TestWriteAnalysis_DefaultIsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAnalysis(&buf, sampleAnalysis(), ""))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestWriteAnalysis_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAnalysis(&buf, sampleAnalysis(), "yaml"))
	assert.Contains(t, buf.String(), "competitor_id: acme")

	var got model.CompetitorAnalysis
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.TotalReviews)
	assert.Equal(t, 1, got.RatingDistribution["5"])
}

func TestWriteAnalysis_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeAnalysis(&buf, sampleAnalysis(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported format "xml"`)
	assert.Zero(t, buf.Len())
}
