// Package exporter serializes filtered salary record sets back to tabular
// formats: delimited text (CSV) matching the source layout plus the derived
// country_iso3 and remote_group columns, and Excel workbooks for
// spreadsheet consumers.
package exporter
