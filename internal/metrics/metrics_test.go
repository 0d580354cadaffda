package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItems(t *testing.T) {
	before := testutil.ToFloat64(Items.WithLabelValues(OutcomeParsed))
	AddItems(OutcomeParsed, 3)
	AddItems(OutcomeParsed, 0)
	AddItems(OutcomeParsed, -2)
	assert.InDelta(t, before+3, testutil.ToFloat64(Items.WithLabelValues(OutcomeParsed)), 1e-9)
}

func TestAddRecords(t *testing.T) {
	before := testutil.ToFloat64(Records.WithLabelValues(OutcomeFailed))
	AddRecords(OutcomeFailed, 2)
	assert.InDelta(t, before+2, testutil.ToFloat64(Records.WithLabelValues(OutcomeFailed)), 1e-9)
}

func TestHandler_ExposesCounters(t *testing.T) {
	reg := NewRegistry()
	Scrapes.WithLabelValues(ResultOK).Inc()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "reviewintel_scrapes_total")
}
