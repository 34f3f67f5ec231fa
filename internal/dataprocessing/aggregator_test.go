package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salarypulse/internal/errors"
	"salarypulse/pkg/contracts/domain"
)

func TestSummarize(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{SalaryUSD: 50000},
		{SalaryUSD: 100000},
		{SalaryUSD: 150000},
	}

	summary, err := Summarize(filtered)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 100000.0, summary.MeanUSD)
	assert.Equal(t, 50000.0, summary.MinUSD)
	assert.Equal(t, 150000.0, summary.MaxUSD)
	assert.Equal(t, "$100,000", summary.Formatted.Mean)
	assert.Equal(t, "$50,000", summary.Formatted.Min)
	assert.Equal(t, "$150,000", summary.Formatted.Max)
}

func TestSummarize_EmptySetIsExplicit(t *testing.T) {
	_, err := Summarize(nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEmptyAggregate))

	_, err = Summarize([]domain.SalaryRecord{})
	assert.True(t, errors.Is(err, apperrors.ErrEmptyAggregate))
}

func TestYearlyMeans(t *testing.T) {
	// years deliberately out of order in the input
	filtered := []domain.SalaryRecord{
		{WorkYear: 2021, SalaryUSD: 300},
		{WorkYear: 2020, SalaryUSD: 100},
		{WorkYear: 2020, SalaryUSD: 200},
	}

	series := YearlyMeans(filtered)

	require.Len(t, series, 2)
	assert.Equal(t, domain.YearlyMean{WorkYear: 2020, MeanUSD: 150.0, Count: 2}, series[0])
	assert.Equal(t, domain.YearlyMean{WorkYear: 2021, MeanUSD: 300.0, Count: 1}, series[1])
}

func TestYearlyMeans_Empty(t *testing.T) {
	assert.Empty(t, YearlyMeans(nil))
}

func TestSalaryDistribution(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{SalaryUSD: 0},
		{SalaryUSD: 10},
		{SalaryUSD: 49},
		{SalaryUSD: 100},
	}

	bins, err := SalaryDistribution(filtered, 4)
	require.NoError(t, err)
	require.Len(t, bins, 4)

	// range [0,100] split into widths of 25
	assert.Equal(t, domain.SalaryBin{LowerUSD: 0, UpperUSD: 25, Count: 2}, bins[0])
	assert.Equal(t, domain.SalaryBin{LowerUSD: 25, UpperUSD: 50, Count: 1}, bins[1])
	assert.Equal(t, domain.SalaryBin{LowerUSD: 50, UpperUSD: 75, Count: 0}, bins[2])
	// the observed maximum lands in the last bin, not past it
	assert.Equal(t, domain.SalaryBin{LowerUSD: 75, UpperUSD: 100, Count: 1}, bins[3])
}

func TestSalaryDistribution_SingleValue(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{SalaryUSD: 90000},
		{SalaryUSD: 90000},
	}

	bins, err := SalaryDistribution(filtered, DefaultSalaryBins)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, domain.SalaryBin{LowerUSD: 90000, UpperUSD: 90000, Count: 2}, bins[0])
}

func TestSalaryDistribution_EmptySetIsExplicit(t *testing.T) {
	_, err := SalaryDistribution(nil, DefaultSalaryBins)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEmptyAggregate))
}

func TestCompanySizeMeans(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{CompanySize: domain.CompanySizeMedium, SalaryUSD: 100},
		{CompanySize: domain.CompanySizeSmall, SalaryUSD: 50},
		{CompanySize: domain.CompanySizeMedium, SalaryUSD: 200},
	}

	means := CompanySizeMeans(filtered)

	require.Len(t, means, 2)
	byLabel := map[string]domain.GroupMean{}
	for _, m := range means {
		byLabel[m.Label] = m
	}
	assert.Equal(t, 150.0, byLabel["Medium"].MeanUSD)
	assert.Equal(t, 2, byLabel["Medium"].Count)
	assert.Equal(t, 50.0, byLabel["Small"].MeanUSD)
}

func TestRemoteGroupMeans_Bucketing(t *testing.T) {
	tests := []struct {
		ratio      int
		wantBucket domain.RemoteGroup
	}{
		{0, domain.RemoteGroupNone}, // first interval is open at 0
		{1, domain.RemoteGroup0To25},
		{25, domain.RemoteGroup0To25},
		{26, domain.RemoteGroup26To50},
		{50, domain.RemoteGroup26To50},
		{51, domain.RemoteGroup51To75},
		{75, domain.RemoteGroup51To75},
		{76, domain.RemoteGroup76To100},
		{100, domain.RemoteGroup76To100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantBucket, domain.BucketRemoteRatio(tt.ratio), "ratio %d", tt.ratio)
	}
}

func TestRemoteGroupMeans(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{RemoteRatio: 0, SalaryUSD: 999999}, // excluded: belongs to no bucket
		{RemoteRatio: 25, SalaryUSD: 100},
		{RemoteRatio: 26, SalaryUSD: 200},
		{RemoteRatio: 100, SalaryUSD: 400},
	}

	means := RemoteGroupMeans(filtered)

	// empty buckets (51-75) are absent, not zero-filled
	require.Len(t, means, 3)
	assert.Equal(t, domain.GroupMean{Label: "0-25", MeanUSD: 100, Count: 1}, means[0])
	assert.Equal(t, domain.GroupMean{Label: "26-50", MeanUSD: 200, Count: 1}, means[1])
	assert.Equal(t, domain.GroupMean{Label: "76-100", MeanUSD: 400, Count: 1}, means[2])
}

func TestCountryMeans_ExcludesUnmappedResidence(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{CountryISO3: "USA", SalaryUSD: 100},
		{CountryISO3: "USA", SalaryUSD: 200},
		{CountryISO3: "", SalaryUSD: 5000}, // unmapped residence: country aggregation only
		{CountryISO3: "DEU", SalaryUSD: 300},
	}

	means := CountryMeans(filtered)

	require.Len(t, means, 2)
	assert.Equal(t, domain.GroupMean{Label: "DEU", MeanUSD: 300, Count: 1}, means[0])
	assert.Equal(t, domain.GroupMean{Label: "USA", MeanUSD: 150, Count: 2}, means[1])

	// the unmapped record still participates in the scalar summary
	summary, err := Summarize(filtered)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 5000.0, summary.MaxUSD)
}

func TestExperienceDistributions(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{ExperienceLevel: domain.ExperienceSenior, SalaryUSD: 100},
		{ExperienceLevel: domain.ExperienceSenior, SalaryUSD: 300},
		{ExperienceLevel: domain.ExperienceJunior, SalaryUSD: 50},
	}

	dists := ExperienceDistributions(filtered)

	require.Len(t, dists, 2)
	byLabel := map[string]domain.GroupDistribution{}
	for _, d := range dists {
		byLabel[d.Label] = d
	}

	senior := byLabel["Senior"]
	assert.Equal(t, 2, senior.Count)
	assert.Equal(t, 200.0, senior.MeanUSD)
	assert.Equal(t, 100.0, senior.MinUSD)
	assert.Equal(t, 300.0, senior.MaxUSD)

	junior := byLabel["Junior"]
	assert.Equal(t, 1, junior.Count)
	assert.Equal(t, 50.0, junior.MinUSD)
}

func TestEmploymentDistributions(t *testing.T) {
	filtered := []domain.SalaryRecord{
		{EmploymentType: domain.EmploymentFullTime, SalaryUSD: 80},
		{EmploymentType: domain.EmploymentFreelance, SalaryUSD: 40},
	}

	dists := EmploymentDistributions(filtered)

	require.Len(t, dists, 2)
	assert.Equal(t, "Freelance", dists[0].Label)
	assert.Equal(t, "Full-time", dists[1].Label)
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0"},
		{999, "$999"},
		{1000, "$1,000"},
		{85000, "$85,000"},
		{1234567.8, "$1,234,568"},
		{100000000, "$100,000,000"},
		{-85000, "-$85,000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(tt.amount))
		})
	}
}
