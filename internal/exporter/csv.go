package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"salarypulse/internal/errors"
	"salarypulse/pkg/contracts/domain"
)

// exportHeader is the column layout of every export: the source columns in
// their original order followed by the two derived columns.
var exportHeader = []string{
	"work_year",
	"experience_level",
	"employment_type",
	"employee_residence",
	"remote_ratio",
	"company_size",
	"salary_in_usd",
	"country_iso3",
	"remote_group",
}

// CSVWriter exports filtered record sets as delimited text
type CSVWriter struct {
	logger    *slog.Logger
	delimiter rune
}

// NewCSVWriter creates a CSV exporter using the given field delimiter
func NewCSVWriter(logger *slog.Logger, delimiter rune) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger:    logger.With(slog.String("component", "csv_exporter")),
		delimiter: delimiter,
	}
}

// Write streams the filtered records as CSV to w, prefixed with a UTF-8 BOM
// so Excel recognizes the encoding.
func (e *CSVWriter) Write(ctx context.Context, w io.Writer, records []domain.SalaryRecord) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	writer.Comma = e.delimiter

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, record := range records {
		if err := writer.Write(recordRow(record)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	e.logger.InfoContext(ctx, "filtered records exported to CSV",
		slog.Int("record_count", len(records)))

	return nil
}

// WriteFile writes the filtered records to a CSV file at path, creating
// parent directories as needed.
func (e *CSVWriter) WriteFile(ctx context.Context, path string, records []domain.SalaryRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for CSV export", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV export file", err)
	}
	defer file.Close()

	if err := e.Write(ctx, file, records); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "CSV export written",
		slog.String("path", path))

	return nil
}

// recordRow renders one record in the export column layout
func recordRow(r domain.SalaryRecord) []string {
	return []string{
		strconv.Itoa(r.WorkYear),
		string(r.ExperienceLevel),
		string(r.EmploymentType),
		r.EmployeeResidence,
		strconv.Itoa(r.RemoteRatio),
		string(r.CompanySize),
		strconv.FormatFloat(r.SalaryUSD, 'f', -1, 64),
		r.CountryISO3,
		string(r.RemoteGroup()),
	}
}
