package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

func TestInstrument_ExposesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Instrument)
	r.Get("/transactions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", metrics.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tally_http_requests_total{method="GET",route="/transactions/{id}",status="404"}`)
	assert.NotContains(t, string(body), "/transactions/abc")
}

func TestRecordCreated(t *testing.T) {
	metrics.RecordCreated("debit", 2)

	n, err := testutil.GatherAndCount(metrics.Registry, "tally_ledger_transactions_created_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
