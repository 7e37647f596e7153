package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/llm"
)

func TestDataFiltersByMetricAndYear(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	seedRecord(t, db, jio.ID, "2023-24", constants.Revenue, 125000)
	seedRecord(t, db, jio.ID, "2023-24", constants.NetProfit, 22500)
	seedRecord(t, db, jio.ID, "2022-23", constants.Revenue, 110000)

	token := registerAndLogin(t, router, "analyst@jio.test", constants.RoleAnalyst, []uuid.UUID{jio.ID})

	w := doJSON(t, router, http.MethodGet, "/data?company="+url.QueryEscape("Jio Platforms"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, "scoped analyst should read the company: %s", w.Body.String())
	var records []entity.FinancialRecord
	decodeBody(t, w, &records)
	assert.Len(t, records, 3, "no filter returns everything")

	w = doJSON(t, router, http.MethodGet,
		"/data?company="+url.QueryEscape("Jio Platforms")+"&metric=revenue&fiscal_year=2023-24", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &records)
	require.Len(t, records, 1, "both filters should narrow to one row")
	assert.Equal(t, constants.Revenue, records[0].MetricType)
	assert.InDelta(t, 125000, records[0].Value, 0.001)
}

func TestDataUnknownCompany(t *testing.T) {
	router, _ := setupServer(t)
	token := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)

	w := doJSON(t, router, http.MethodGet, "/data?company=Nobody", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "an unknown company name is 404")
	assert.Contains(t, w.Body.String(), "company not found")
}

func TestDataOutOfScopeCompany(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	retail := seedCompany(t, db, "Reliance Retail")
	seedRecord(t, db, retail.ID, "2023-24", constants.Revenue, 260000)

	token := registerAndLogin(t, router, "analyst@jio.test", constants.RoleAnalyst, []uuid.UUID{jio.ID})

	w := doJSON(t, router, http.MethodGet, "/data?company="+url.QueryEscape("Reliance Retail"), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "assignments bound what an analyst can read")
	assert.Contains(t, w.Body.String(), "access denied")
}

func TestDataValidation(t *testing.T) {
	router, db := setupServer(t)
	seedCompany(t, db, "Jio Platforms")
	token := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)

	w := doJSON(t, router, http.MethodGet, "/data", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "the company parameter is required")

	w = doJSON(t, router, http.MethodGet, "/data?company="+url.QueryEscape("Jio Platforms")+"&metric=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a metric outside the vocabulary is rejected")
	assert.Contains(t, w.Body.String(), "unknown metric")
}

func TestChartDataShape(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	seedRecord(t, db, jio.ID, "2021-22", constants.Revenue, 95000)
	seedRecord(t, db, jio.ID, "2022-23", constants.Revenue, 110000)
	seedRecord(t, db, jio.ID, "2023-24", constants.Revenue, 125000)

	token := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)

	w := doJSON(t, router, http.MethodGet,
		"/chart-data?company_id="+jio.ID.String()+"&metric_type=revenue&start_year=2022-23", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "chart data should come back: %s", w.Body.String())

	var chart llm.ChartData
	decodeBody(t, w, &chart)
	assert.Equal(t, []string{"2022-23", "2023-24"}, chart.Labels, "labels run oldest first and honor the range")
	require.Len(t, chart.Datasets, 1, "one metric means one dataset")
	assert.Equal(t, "Revenue", chart.Datasets[0].Label)
	assert.Equal(t, "#36A2EB", chart.Datasets[0].BorderColor, "the dashboard expects the fixed series color")
	require.Len(t, chart.Datasets[0].Data, 2)
	assert.InDelta(t, 110000, *chart.Datasets[0].Data[0], 0.001)
}

func TestChartDataValidation(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	token := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)

	w := doJSON(t, router, http.MethodGet, "/chart-data?company_id=nope&metric_type=revenue", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "company_id must be a uuid")

	w = doJSON(t, router, http.MethodGet, "/chart-data?company_id="+jio.ID.String()+"&metric_type=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "metric_type must come from the vocabulary")

	w = doJSON(t, router, http.MethodGet, "/chart-data?company_id="+uuid.NewString()+"&metric_type=revenue", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "a missing company is 404")
}

func TestCompaniesScopedByRole(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	seedCompany(t, db, "Reliance Retail")

	chairman := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)
	analyst := registerAndLogin(t, router, "analyst@jio.test", constants.RoleAnalyst, []uuid.UUID{jio.ID})
	idle := registerAndLogin(t, router, "idle@jio.test", constants.RoleAnalyst, nil)

	var companies []entity.Company

	w := doJSON(t, router, http.MethodGet, "/companies", chairman, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &companies)
	assert.Len(t, companies, 2, "chairman sees every company")

	w = doJSON(t, router, http.MethodGet, "/companies", analyst, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &companies)
	require.Len(t, companies, 1, "analyst sees only assignments")
	assert.Equal(t, "Jio Platforms", companies[0].Name)

	w = doJSON(t, router, http.MethodGet, "/companies", idle, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String(), "no assignments means an empty list, not null")
}
