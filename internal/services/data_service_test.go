package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarypulse/internal/config"
	apperrors "salarypulse/internal/errors"
	"salarypulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Dataset.Delimiter = ","
	cfg.Dataset.ExportDir = "exports"
	return cfg
}

func testTable() []domain.SalaryRecord {
	return []domain.SalaryRecord{
		{WorkYear: 2020, ExperienceLevel: domain.ExperienceJunior, EmploymentType: domain.EmploymentFullTime, EmployeeResidence: "US", RemoteRatio: 0, CompanySize: domain.CompanySizeSmall, SalaryUSD: 60000, CountryISO3: "USA"},
		{WorkYear: 2021, ExperienceLevel: domain.ExperienceMid, EmploymentType: domain.EmploymentFullTime, EmployeeResidence: "DE", RemoteRatio: 50, CompanySize: domain.CompanySizeMedium, SalaryUSD: 90000, CountryISO3: "DEU"},
		{WorkYear: 2021, ExperienceLevel: domain.ExperienceSenior, EmploymentType: domain.EmploymentContract, EmployeeResidence: "GB", RemoteRatio: 100, CompanySize: domain.CompanySizeLarge, SalaryUSD: 150000, CountryISO3: "GBR"},
		{WorkYear: 2022, ExperienceLevel: domain.ExperienceExecutive, EmploymentType: domain.EmploymentFullTime, EmployeeResidence: "US", RemoteRatio: 100, CompanySize: domain.CompanySizeLarge, SalaryUSD: 250000, CountryISO3: "USA"},
	}
}

func newTestService(t *testing.T) *DataService {
	t.Helper()
	return NewDataServiceFromTable(testConfig(), testLogger(), testTable())
}

func TestNewDataService_LoadsDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salaries.csv")
	csv := "work_year,experience_level,employment_type,employee_residence,remote_ratio,company_size,salary_in_usd\n" +
		"2021,SE,FT,US,100,L,150000\n" +
		"2022,MI,PT,DE,0,M,70000\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	cfg := testConfig()
	cfg.Dataset.Path = path

	ds, err := NewDataService(context.Background(), cfg, testLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.RecordCount())
}

func TestNewDataService_MissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Dataset.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err := NewDataService(context.Background(), cfg, testLogger(), nil)
	assert.Error(t, err)
}

func TestGetFilterOptions(t *testing.T) {
	ds := newTestService(t)

	opts, err := ds.GetFilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2020, 2021, 2022}, opts.Years)
	assert.Equal(t, []string{"DE", "GB", "US"}, opts.Countries)
	assert.Len(t, opts.ExperienceLevels, 4)
	assert.Equal(t, 0, opts.RemoteRatioMin)
	assert.Equal(t, 100, opts.RemoteRatioMax)
}

func TestGetFilterOptions_EmptyTable(t *testing.T) {
	ds := NewDataServiceFromTable(testConfig(), testLogger(), nil)

	_, err := ds.GetFilterOptions(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestGetSummary_Unfiltered(t *testing.T) {
	ds := newTestService(t)

	summary, err := ds.GetSummary(context.Background(), DefaultFilterRequest())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Count)
	assert.InDelta(t, 137500.0, summary.MeanUSD, 0.001)
	assert.InDelta(t, 60000.0, summary.MinUSD, 0.001)
	assert.InDelta(t, 250000.0, summary.MaxUSD, 0.001)
}

func TestGetSummary_Filtered(t *testing.T) {
	ds := newTestService(t)

	req := DefaultFilterRequest()
	req.Years = []int{2021}

	summary, err := ds.GetSummary(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 120000.0, summary.MeanUSD, 0.001)
}

func TestGetSummary_NoMatches(t *testing.T) {
	ds := newTestService(t)

	req := DefaultFilterRequest()
	req.Years = []int{2019}

	_, err := ds.GetSummary(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmptyAggregate)
}

func TestGetSummary_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  FilterRequest
	}{
		{
			name: "remote max below min",
			req:  FilterRequest{RemoteMin: 80, RemoteMax: 20},
		},
		{
			name: "remote min out of range",
			req:  FilterRequest{RemoteMin: -1, RemoteMax: 100},
		},
		{
			name: "remote max out of range",
			req:  FilterRequest{RemoteMin: 0, RemoteMax: 101},
		},
		{
			name: "malformed country code",
			req:  FilterRequest{RemoteMax: 100, Countries: []string{"USA"}},
		},
		{
			name: "year out of range",
			req:  FilterRequest{RemoteMax: 100, Years: []int{1999}},
		},
	}

	ds := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ds.GetSummary(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestGetYearlyMeans(t *testing.T) {
	ds := newTestService(t)

	means, err := ds.GetYearlyMeans(context.Background(), DefaultFilterRequest())
	require.NoError(t, err)

	require.Len(t, means, 3)
	assert.Equal(t, 2020, means[0].WorkYear)
	assert.InDelta(t, 60000.0, means[0].MeanUSD, 0.001)
	assert.Equal(t, 2021, means[1].WorkYear)
	assert.InDelta(t, 120000.0, means[1].MeanUSD, 0.001)
	assert.Equal(t, 2022, means[2].WorkYear)
}

func TestGetSalaryDistribution(t *testing.T) {
	ds := newTestService(t)

	bins, err := ds.GetSalaryDistribution(context.Background(), DefaultFilterRequest())
	require.NoError(t, err)

	require.Len(t, bins, 50)
	assert.InDelta(t, 60000.0, bins[0].LowerUSD, 0.001)
	assert.InDelta(t, 250000.0, bins[49].UpperUSD, 0.001)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, bins[49].Count)
}

func TestGetSalaryDistribution_NoMatches(t *testing.T) {
	ds := newTestService(t)

	req := DefaultFilterRequest()
	req.Years = []int{2019}

	_, err := ds.GetSalaryDistribution(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmptyAggregate)
}

func TestGetRemoteGroupMeans_ExcludesOnsite(t *testing.T) {
	ds := newTestService(t)

	means, err := ds.GetRemoteGroupMeans(context.Background(), DefaultFilterRequest())
	require.NoError(t, err)

	// the ratio-0 record falls in no bucket
	require.Len(t, means, 2)
	assert.Equal(t, "26-50", means[0].Label)
	assert.Equal(t, "76-100", means[1].Label)
	assert.Equal(t, 2, means[1].Count)
}

func TestGetCountryMeans(t *testing.T) {
	ds := newTestService(t)

	means, err := ds.GetCountryMeans(context.Background(), DefaultFilterRequest())
	require.NoError(t, err)

	require.Len(t, means, 3)
	groups := make(map[string]float64, len(means))
	for _, m := range means {
		groups[m.Label] = m.MeanUSD
	}
	assert.InDelta(t, 155000.0, groups["USA"], 0.001)
	assert.InDelta(t, 90000.0, groups["DEU"], 0.001)
	assert.InDelta(t, 150000.0, groups["GBR"], 0.001)
}

func TestGetRecords_FilterConjunction(t *testing.T) {
	ds := newTestService(t)

	req := DefaultFilterRequest()
	req.Countries = []string{"US"}
	req.RemoteMin = 50

	records, err := ds.GetRecords(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, domain.ExperienceExecutive, records[0].ExperienceLevel)
}

func TestGetRecords_EmptyResultIsNotAnError(t *testing.T) {
	ds := newTestService(t)

	req := DefaultFilterRequest()
	req.CompanySizes = []string{string(domain.CompanySizeSmall)}
	req.Years = []int{2022}

	records, err := ds.GetRecords(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportCSV(t *testing.T) {
	ds := newTestService(t)

	var buf bytes.Buffer
	req := DefaultFilterRequest()
	req.Years = []int{2020}

	require.NoError(t, ds.ExportCSV(context.Background(), &buf, req))

	out := buf.String()
	assert.Contains(t, out, "work_year")
	assert.Contains(t, out, "60000")
	assert.NotContains(t, out, "150000")
}

func TestExportExcel(t *testing.T) {
	ds := newTestService(t)

	var buf bytes.Buffer
	require.NoError(t, ds.ExportExcel(context.Background(), &buf, DefaultFilterRequest()))
	assert.NotZero(t, buf.Len())
}
