package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"salarypulse/pkg/contracts/domain"
)

const sheetName = "Filtered Salaries"

// ExcelWriter exports filtered record sets as Excel workbooks
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates an Excel exporter
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{
		logger: logger.With(slog.String("component", "excel_exporter")),
	}
}

// Write streams the filtered records as an XLSX workbook to w. Numeric
// columns are written as numbers so spreadsheet formulas work on them.
func (e *ExcelWriter) Write(ctx context.Context, w io.Writer, records []domain.SalaryRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, name := range exportHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i, err)
		}
		row := []interface{}{
			record.WorkYear,
			string(record.ExperienceLevel),
			string(record.EmploymentType),
			record.EmployeeResidence,
			record.RemoteRatio,
			string(record.CompanySize),
			record.SalaryUSD,
			record.CountryISO3,
			string(record.RemoteGroup()),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.InfoContext(ctx, "filtered records exported to Excel",
		slog.Int("record_count", len(records)))

	return nil
}
