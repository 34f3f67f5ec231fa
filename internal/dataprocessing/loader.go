package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"salarypulse/internal/errors"
)

// RawRecord is one row of the dataset exactly as it appears on disk,
// before categorical relabeling. Only remote_ratio, work_year and
// salary_in_usd carry a hard type contract at this stage.
type RawRecord struct {
	WorkYear          int
	ExperienceCode    string
	EmploymentCode    string
	EmployeeResidence string
	RemoteRatio       int
	CompanySizeCode   string
	SalaryUSD         float64
}

// requiredColumns are the header columns the loader insists on. Extra
// columns in the file are ignored.
var requiredColumns = []string{
	"work_year",
	"experience_level",
	"employment_type",
	"employee_residence",
	"remote_ratio",
	"company_size",
	"salary_in_usd",
}

// Loader reads the salary dataset from a delimited text file
type Loader struct {
	logger    *slog.Logger
	delimiter rune
}

// NewLoader creates a loader for files using the given field delimiter
func NewLoader(logger *slog.Logger, delimiter rune) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger.With(slog.String("component", "loader")),
		delimiter: delimiter,
	}
}

// LoadFile reads the dataset at path into raw records
func (l *Loader) LoadFile(ctx context.Context, path string) ([]RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open dataset %s", path), err)
	}
	defer file.Close()

	records, err := l.Load(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}

// Load reads the dataset from r. The first row must be a header containing
// at least the required columns; rows are decoded positionally from it.
// A remote_ratio, work_year or salary_in_usd value that does not parse is a
// DataError and aborts the load, since downstream filtering assumes integer
// semantics for these fields.
func (l *Loader) Load(ctx context.Context, r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewParsingError("failed to read dataset header", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read dataset row %d", line), err)
		}

		record, err := parseRow(row, columns, line)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("row_count", len(records)))

	return records, nil
}

// mapColumns resolves the position of each required column in the header
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, errors.NewDataError(fmt.Sprintf("dataset is missing required column %q", required), nil)
		}
	}
	return columns, nil
}

// parseRow decodes one data row into a RawRecord
func parseRow(row []string, columns map[string]int, line int) (RawRecord, error) {
	field := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(row) {
			return "", errors.NewDataError(fmt.Sprintf("row %d is missing column %q", line, name), nil)
		}
		return strings.TrimSpace(row[idx]), nil
	}

	var record RawRecord
	var err error

	yearStr, err := field("work_year")
	if err != nil {
		return record, err
	}
	record.WorkYear, err = strconv.Atoi(yearStr)
	if err != nil {
		return record, errors.NewDataError(fmt.Sprintf("row %d: work_year %q is not an integer", line, yearStr), err)
	}

	ratioStr, err := field("remote_ratio")
	if err != nil {
		return record, err
	}
	record.RemoteRatio, err = strconv.Atoi(ratioStr)
	if err != nil {
		return record, errors.NewDataError(fmt.Sprintf("row %d: remote_ratio %q is not an integer", line, ratioStr), err)
	}

	salaryStr, err := field("salary_in_usd")
	if err != nil {
		return record, err
	}
	record.SalaryUSD, err = strconv.ParseFloat(salaryStr, 64)
	if err != nil {
		return record, errors.NewDataError(fmt.Sprintf("row %d: salary_in_usd %q is not numeric", line, salaryStr), err)
	}
	if record.SalaryUSD < 0 {
		return record, errors.NewDataError(fmt.Sprintf("row %d: salary_in_usd %q is negative", line, salaryStr), nil)
	}

	if record.ExperienceCode, err = field("experience_level"); err != nil {
		return record, err
	}
	if record.EmploymentCode, err = field("employment_type"); err != nil {
		return record, err
	}
	if record.CompanySizeCode, err = field("company_size"); err != nil {
		return record, err
	}
	if record.EmployeeResidence, err = field("employee_residence"); err != nil {
		return record, err
	}
	record.EmployeeResidence = strings.ToUpper(record.EmployeeResidence)

	return record, nil
}
