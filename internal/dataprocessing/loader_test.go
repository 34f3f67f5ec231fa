package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarypulse/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleCSV = `work_year,experience_level,employment_type,job_title,salary,salary_currency,salary_in_usd,employee_residence,remote_ratio,company_location,company_size
2023,SE,FT,Data Scientist,85000,USD,85000,US,100,US,M
2024,EN,PT,Data Analyst,30000,EUR,32000,de,0,DE,S
2025,EX,CT,Head of Data,250000,USD,250000,GB,50,GB,L
`

func TestLoader_Load(t *testing.T) {
	loader := NewLoader(testLogger(), ',')

	records, err := loader.Load(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 2023, first.WorkYear)
	assert.Equal(t, "SE", first.ExperienceCode)
	assert.Equal(t, "FT", first.EmploymentCode)
	assert.Equal(t, "US", first.EmployeeResidence)
	assert.Equal(t, 100, first.RemoteRatio)
	assert.Equal(t, "M", first.CompanySizeCode)
	assert.Equal(t, 85000.0, first.SalaryUSD)

	// residence codes are uppercased on load
	assert.Equal(t, "DE", records[1].EmployeeResidence)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantData bool
		wantMsg  string
	}{
		{
			name:     "missing required column",
			csv:      "work_year,experience_level\n2023,SE\n",
			wantData: true,
			wantMsg:  "missing required column",
		},
		{
			name: "non-integer remote_ratio is fatal",
			csv: "work_year,experience_level,employment_type,employee_residence,remote_ratio,company_size,salary_in_usd\n" +
				"2023,SE,FT,US,half,M,85000\n",
			wantData: true,
			wantMsg:  "remote_ratio",
		},
		{
			name: "non-integer work_year is fatal",
			csv: "work_year,experience_level,employment_type,employee_residence,remote_ratio,company_size,salary_in_usd\n" +
				"twenty23,SE,FT,US,0,M,85000\n",
			wantData: true,
			wantMsg:  "work_year",
		},
		{
			name: "non-numeric salary is fatal",
			csv: "work_year,experience_level,employment_type,employee_residence,remote_ratio,company_size,salary_in_usd\n" +
				"2023,SE,FT,US,0,M,lots\n",
			wantData: true,
			wantMsg:  "salary_in_usd",
		},
		{
			name: "negative salary is fatal",
			csv: "work_year,experience_level,employment_type,employee_residence,remote_ratio,company_size,salary_in_usd\n" +
				"2023,SE,FT,US,0,M,-1\n",
			wantData: true,
			wantMsg:  "negative",
		},
		{
			name:     "empty input has no header",
			csv:      "",
			wantData: false,
			wantMsg:  "header",
		},
	}

	loader := NewLoader(testLogger(), ',')
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Equal(t, tt.wantData, errors.IsDataError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoader_Load_UnrecognizedCodesAreNotFatal(t *testing.T) {
	csv := "work_year,experience_level,employment_type,employee_residence,remote_ratio,company_size,salary_in_usd\n" +
		"2023,ZZ,XX,US,0,Q,85000\n"

	loader := NewLoader(testLogger(), ',')
	records, err := loader.Load(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ZZ", records[0].ExperienceCode)
}

func TestLoader_Load_SemicolonDelimiter(t *testing.T) {
	csv := "work_year;experience_level;employment_type;employee_residence;remote_ratio;company_size;salary_in_usd\n" +
		"2023;SE;FT;US;25;M;85000\n"

	loader := NewLoader(testLogger(), ';')
	records, err := loader.Load(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 25, records[0].RemoteRatio)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salaries.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	loader := NewLoader(testLogger(), ',')

	records, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = loader.LoadFile(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
