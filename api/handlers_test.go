/*
handlers_test.go - Tests for the report API

Tests for:
- Listing and filtering report rows
- Single employee lookup
- Summary aggregation
- Health and metrics endpoints
*/
package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sport-bonus/api"
	"github.com/warp/sport-bonus/observability"
	"github.com/warp/sport-bonus/report"
	"github.com/warp/sport-bonus/store"
)

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	rows := []report.Row{
		{EmployeeID: "a1", Salary: decimal.NewFromInt(3000), TotalActivities: 20,
			EligibleWellnessDays: true, EligibleBonus: true,
			BonusAmount: decimal.NewFromInt(150), NewSalary: decimal.NewFromInt(3150)},
		{EmployeeID: "b2", Salary: decimal.NewFromInt(2000), TotalActivities: 16,
			EligibleWellnessDays: true,
			BonusAmount: decimal.Zero, NewSalary: decimal.NewFromInt(2000)},
		{EmployeeID: "c3", Salary: decimal.NewFromInt(1000), TotalActivities: 1,
			BonusAmount: decimal.Zero, NewSalary: decimal.NewFromInt(1000)},
	}
	require.NoError(t, m.Replace(context.Background(), report.DefaultTable, rows))
	return m
}

func serve(t *testing.T, h *api.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	api.NewRouter(h, []string{"*"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestListReport(t *testing.T) {
	// GIVEN: A stored report with three employees
	h := api.NewHandler(seededStore(t), "", nil)

	// WHEN: Listing the report
	rec := serve(t, h, "/api/report")

	// THEN: Every row comes back with amounts as fixed strings
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.ReportResponse](t, rec)
	assert.Equal(t, report.DefaultTable, resp.Table)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, "3150.00", resp.Rows[0].NewSalary)
}

func TestListReport_Filters(t *testing.T) {
	h := api.NewHandler(seededStore(t), "", nil)

	bonus := decode[api.ReportResponse](t, serve(t, h, "/api/report?eligible=bonus"))
	assert.Equal(t, 1, bonus.Count)
	assert.Equal(t, "a1", bonus.Rows[0].EmployeeID)

	wellness := decode[api.ReportResponse](t, serve(t, h, "/api/report?eligible=wellness"))
	assert.Equal(t, 2, wellness.Count)

	rec := serve(t, h, "/api/report?eligible=everyone")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReport_NoTableYet(t *testing.T) {
	h := api.NewHandler(store.NewMemory(), "", nil)
	rec := serve(t, h, "/api/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[api.ErrorResponse](t, rec).Error, "run the pipeline first")
}

func TestGetEmployee(t *testing.T) {
	h := api.NewHandler(seededStore(t), "", nil)

	rec := serve(t, h, "/api/report/A1")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[report.Record](t, rec)
	assert.Equal(t, "a1", got.EmployeeID)
	assert.Equal(t, "150.00", got.BonusAmount)

	assert.Equal(t, http.StatusNotFound, serve(t, h, "/api/report/zz").Code)
}

func TestGetSummary(t *testing.T) {
	h := api.NewHandler(seededStore(t), "", nil)

	rec := serve(t, h, "/api/report/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.SummaryResponse](t, rec)
	assert.Equal(t, 3, resp.Summary.Employees)
	assert.Equal(t, 1, resp.Summary.BonusesGranted)
	assert.Equal(t, 2, resp.Summary.WellnessEligible)
	assert.Equal(t, "150.00", resp.Summary.TotalBonus)
}

type failingReader struct{ store.Memory }

func (f *failingReader) Ping(context.Context) error { return errors.New("connection reset") }

func (f *failingReader) ListReport(context.Context, string) ([]report.Row, error) {
	return nil, errors.New("connection reset")
}

func TestHealth(t *testing.T) {
	ok := serve(t, api.NewHandler(seededStore(t), "", nil), "/healthz")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "ok", decode[api.HealthResponse](t, ok).Status)

	down := serve(t, api.NewHandler(&failingReader{}, "", nil), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, down.Code)
}

func TestListReport_ReaderFailure(t *testing.T) {
	rec := serve(t, api.NewHandler(&failingReader{}, "", nil), "/api/report")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "connection reset", decode[api.ErrorResponse](t, rec).Details)
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.New()
	m.Employees.Set(3)
	h := api.NewHandler(seededStore(t), "", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	rec := serve(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sport_bonus_employees 3")
}
