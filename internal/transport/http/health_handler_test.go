package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarypulse/internal/config"
	"salarypulse/internal/services"
	"salarypulse/pkg/contracts/domain"
)

func newHealthHandler(table []domain.SalaryRecord) *HealthHandler {
	cfg := &config.Config{}
	cfg.Dataset.Delimiter = ","
	ds := services.NewDataServiceFromTable(cfg, testLogger(), table)
	return NewHealthHandler(services.NewHealthService("test", ds, testLogger()), testLogger())
}

func sampleTable() []domain.SalaryRecord {
	return []domain.SalaryRecord{
		{WorkYear: 2022, ExperienceLevel: domain.ExperienceSenior, EmploymentType: domain.EmploymentFullTime, EmployeeResidence: "US", RemoteRatio: 100, CompanySize: domain.CompanySizeLarge, SalaryUSD: 150000, CountryISO3: "USA"},
	}
}

func TestHealthCheck(t *testing.T) {
	h := newHealthHandler(sampleTable())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestReadinessCheck_Ready(t *testing.T) {
	h := newHealthHandler(sampleTable())

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessCheck_EmptyDatasetNotReady(t *testing.T) {
	h := newHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestLivenessCheck(t *testing.T) {
	h := newHealthHandler(sampleTable())

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestVersion(t *testing.T) {
	h := newHealthHandler(sampleTable())

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body["version"])
	assert.Contains(t, body, "go_version")
}
