// Command exportcsv filters the salary dataset offline and writes the
// selection to a CSV or XLSX file, applying the same normalization and
// filter semantics as the web service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"salarypulse/internal/config"
	"salarypulse/internal/infrastructure"
	"salarypulse/internal/services"
)

func main() {
	dataset := flag.String("dataset", "", "input csv file (defaults to the configured dataset path)")
	out := flag.String("out", "", "output file path (defaults to <export_dir>/salaries_<date>.<format>)")
	format := flag.String("format", "csv", "csv | xlsx")
	experience := flag.String("experience", "", "comma-separated experience levels (Junior,Mid,Senior,Executive)")
	employment := flag.String("employment", "", "comma-separated employment types (Full-time,Part-time,Contract,Freelance)")
	sizes := flag.String("size", "", "comma-separated company sizes (Small,Medium,Large)")
	countries := flag.String("country", "", "comma-separated ISO alpha-2 residence codes")
	years := flag.String("year", "", "comma-separated work years")
	remoteMin := flag.Int("remote-min", 0, "minimum remote ratio, inclusive")
	remoteMax := flag.Int("remote-max", 100, "maximum remote ratio, inclusive")
	flag.Parse()

	if *format != "csv" && *format != "xlsx" {
		slog.Error("Invalid format", slog.String("format", *format))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *dataset != "" {
		cfg.Dataset.Path = *dataset
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	ctx := context.Background()

	ds, err := services.NewDataService(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("Failed to load dataset",
			slog.String("path", cfg.Dataset.Path),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	req, err := buildRequest(*experience, *employment, *sizes, *countries, *years, *remoteMin, *remoteMax)
	if err != nil {
		logger.Error("Invalid filter flags", slog.String("error", err.Error()))
		os.Exit(1)
	}

	target := *out
	if target == "" {
		target = filepath.Join(cfg.Dataset.ExportDir,
			fmt.Sprintf("salaries_%s.%s", time.Now().Format("2006-01-02"), *format))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		logger.Error("Cannot create output directory",
			slog.String("path", filepath.Dir(target)),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	f, err := os.Create(target)
	if err != nil {
		logger.Error("Cannot create output file",
			slog.String("path", target),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	switch *format {
	case "csv":
		err = ds.ExportCSV(ctx, f, req)
	case "xlsx":
		err = ds.ExportExcel(ctx, f, req)
	}
	if err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	records, err := ds.GetRecords(ctx, req)
	if err == nil {
		logger.Info("Export complete",
			slog.String("output", target),
			slog.String("format", *format),
			slog.Int("records", len(records)))
	}
}

// buildRequest turns the CLI flags into a filter request
func buildRequest(experience, employment, sizes, countries, years string, remoteMin, remoteMax int) (services.FilterRequest, error) {
	req := services.DefaultFilterRequest()
	req.ExperienceLevels = splitList(experience)
	req.EmploymentTypes = splitList(employment)
	req.CompanySizes = splitList(sizes)
	req.Countries = splitList(countries)
	req.RemoteMin = remoteMin
	req.RemoteMax = remoteMax

	for _, raw := range splitList(years) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid year %q", raw)
		}
		req.Years = append(req.Years, year)
	}

	return req, nil
}

// splitList splits a comma-separated flag value, dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
