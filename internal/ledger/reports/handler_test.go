package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(src *mockSources) http.Handler {
	svc := NewService(src, src, mockSnapshots{parent: src}, src, NewCache(nil, 0), slog.Default())
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		Routes(r, h)
	})
	return r
}

func TestRealBalanceEndpoint(t *testing.T) {
	router := newTestRouter(fixtureSources())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/balance/real?accounts=1&start=2024-01-01&end=2024-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var views []BalancePointView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 31)

	var jan15 BalancePointView
	for _, v := range views {
		if v.Date == "2024-01-15" {
			jan15 = v
		}
	}
	assert.Equal(t, "1000", jan15.RealBalance)
	require.NotNil(t, jan15.Snapshot)
	assert.Equal(t, "1000", *jan15.Snapshot)
	assert.Equal(t, "EUR 1,000.00", jan15.Display)
}

func TestRealBalanceEndpointRejectsMissingAccounts(t *testing.T) {
	router := newTestRouter(fixtureSources())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/balance/real?start=2024-01-01&end=2024-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRealBalanceEndpointRejectsReversedWindow(t *testing.T) {
	router := newTestRouter(fixtureSources())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/balance/real?accounts=1&start=2024-02-01&end=2024-01-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpensesEndpointDefaultsToCategory(t *testing.T) {
	router := newTestRouter(fixtureSources())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/expenses?accounts=1&start=2024-01-01&end=2024-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var totals []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	require.Len(t, totals, 1)
	assert.Equal(t, "food", totals[0]["Group"])
}

func TestAccountsEndpoint(t *testing.T) {
	router := newTestRouter(fixtureSources())

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIdealBalanceEndpointMatchesWindowLength(t *testing.T) {
	router := newTestRouter(fixtureSources())

	start, end := "2024-03-01", "2024-03-10"
	req := httptest.NewRequest(http.MethodGet, "/api/reports/balance/ideal?accounts=1&start="+start+"&end="+end, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var views []BalancePointView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	from, _ := time.Parse(time.DateOnly, start)
	to, _ := time.Parse(time.DateOnly, end)
	assert.Len(t, views, int(to.Sub(from).Hours()/24)+1)
}
