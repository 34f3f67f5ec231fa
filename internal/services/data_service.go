package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"salarypulse/internal/config"
	"salarypulse/internal/dataprocessing"
	"salarypulse/internal/exporter"
	"salarypulse/internal/infrastructure"
	"salarypulse/pkg/contracts/domain"
)

// FilterRequest carries the client-selected filter parameters. A nil or
// empty slice means "all observed values"; an explicitly empty selection is
// expressed by the caller sending a value that matches nothing.
type FilterRequest struct {
	ExperienceLevels []string `json:"experience_levels" validate:"omitempty,dive,min=1"`
	EmploymentTypes  []string `json:"employment_types" validate:"omitempty,dive,min=1"`
	CompanySizes     []string `json:"company_sizes" validate:"omitempty,dive,min=1"`
	Countries        []string `json:"countries" validate:"omitempty,dive,len=2,alpha"`
	Years            []int    `json:"years" validate:"omitempty,dive,min=2000,max=2100"`
	RemoteMin        int      `json:"remote_min" validate:"min=0,max=100"`
	RemoteMax        int      `json:"remote_max" validate:"min=0,max=100,gtefield=RemoteMin"`
}

// DefaultFilterRequest returns the unfiltered request
func DefaultFilterRequest() FilterRequest {
	return FilterRequest{RemoteMin: 0, RemoteMax: 100}
}

// DataService owns the immutable normalized salary table and serves every
// filtered view and aggregation over it.
type DataService struct {
	cfg      *config.Config
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *infrastructure.BusinessMetrics

	table   []domain.SalaryRecord
	options domain.FilterOptions

	csvExporter   *exporter.CSVWriter
	excelExporter *exporter.ExcelWriter
}

// NewDataService loads and normalizes the dataset named by cfg and returns a
// service over the resulting table. Metrics may be nil.
func NewDataService(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*DataService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	serviceLogger := logger.With(slog.String("component", "data_service"))

	loader := dataprocessing.NewLoader(logger, cfg.DelimiterRune())
	raw, err := loader.LoadFile(ctx, cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	normalizer := dataprocessing.NewNormalizer(logger)
	table := normalizer.Normalize(ctx, raw)

	if metrics != nil {
		metrics.DatasetRowsLoaded.Add(ctx, int64(len(raw)))
		metrics.DatasetRowsNormalized.Add(ctx, int64(len(table)))
	}

	ds := &DataService{
		cfg:           cfg,
		logger:        serviceLogger,
		validate:      validator.New(),
		metrics:       metrics,
		table:         table,
		options:       observedOptions(table),
		csvExporter:   exporter.NewCSVWriter(logger, cfg.DelimiterRune()),
		excelExporter: exporter.NewExcelWriter(logger),
	}

	serviceLogger.InfoContext(ctx, "DataService initialized",
		slog.String("dataset", cfg.Dataset.Path),
		slog.Int("record_count", len(table)),
		slog.Int("year_count", len(ds.options.Years)),
		slog.Int("country_count", len(ds.options.Countries)))

	return ds, nil
}

// NewDataServiceFromTable builds a service over an already-normalized table.
// Used by tests and the batch exporter.
func NewDataServiceFromTable(cfg *config.Config, logger *slog.Logger, table []domain.SalaryRecord) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		cfg:           cfg,
		logger:        logger.With(slog.String("component", "data_service")),
		validate:      validator.New(),
		table:         table,
		options:       observedOptions(table),
		csvExporter:   exporter.NewCSVWriter(logger, cfg.DelimiterRune()),
		excelExporter: exporter.NewExcelWriter(logger),
	}
}

// RecordCount returns the size of the normalized table
func (ds *DataService) RecordCount() int {
	return len(ds.table)
}

// GetFilterOptions returns the distinct observed values per filterable
// field; these are the client-side defaults meaning "unfiltered".
func (ds *DataService) GetFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	if len(ds.table) == 0 {
		return domain.FilterOptions{}, ErrDatasetNotLoaded
	}
	return ds.options, nil
}

// GetSummary computes the scalar salary summary over the filtered view.
// Returns errors.ErrEmptyAggregate (wrapped) when no record matches.
func (ds *DataService) GetSummary(ctx context.Context, req FilterRequest) (domain.SalarySummary, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return domain.SalarySummary{}, err
	}
	ds.countAggregation(ctx, "summary")
	return dataprocessing.Summarize(filtered)
}

// GetYearlyMeans computes the yearly mean-salary series over the filtered view
func (ds *DataService) GetYearlyMeans(ctx context.Context, req FilterRequest) ([]domain.YearlyMean, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "yearly")
	return dataprocessing.YearlyMeans(filtered), nil
}

// GetSalaryDistribution computes the fixed-width salary histogram over the
// filtered view. Returns errors.ErrEmptyAggregate (wrapped) when no record
// matches.
func (ds *DataService) GetSalaryDistribution(ctx context.Context, req FilterRequest) ([]domain.SalaryBin, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "salary_distribution")
	return dataprocessing.SalaryDistribution(filtered, dataprocessing.DefaultSalaryBins)
}

// GetCompanySizeMeans computes per-company-size mean salaries
func (ds *DataService) GetCompanySizeMeans(ctx context.Context, req FilterRequest) ([]domain.GroupMean, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "company_size")
	return dataprocessing.CompanySizeMeans(filtered), nil
}

// GetRemoteGroupMeans computes per-remote-bucket mean salaries
func (ds *DataService) GetRemoteGroupMeans(ctx context.Context, req FilterRequest) ([]domain.GroupMean, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "remote_group")
	return dataprocessing.RemoteGroupMeans(filtered), nil
}

// GetCountryMeans computes per-country mean salaries keyed by ISO alpha-3
func (ds *DataService) GetCountryMeans(ctx context.Context, req FilterRequest) ([]domain.GroupMean, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "country")
	return dataprocessing.CountryMeans(filtered), nil
}

// GetExperienceDistributions computes per-experience-level salary spread
func (ds *DataService) GetExperienceDistributions(ctx context.Context, req FilterRequest) ([]domain.GroupDistribution, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "experience")
	return dataprocessing.ExperienceDistributions(filtered), nil
}

// GetEmploymentDistributions computes per-employment-type salary spread
func (ds *DataService) GetEmploymentDistributions(ctx context.Context, req FilterRequest) ([]domain.GroupDistribution, error) {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return nil, err
	}
	ds.countAggregation(ctx, "employment")
	return dataprocessing.EmploymentDistributions(filtered), nil
}

// GetRecords returns the filtered record set itself
func (ds *DataService) GetRecords(ctx context.Context, req FilterRequest) ([]domain.SalaryRecord, error) {
	return ds.filtered(ctx, req)
}

// ExportCSV streams the filtered record set as CSV to w
func (ds *DataService) ExportCSV(ctx context.Context, w io.Writer, req FilterRequest) error {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return err
	}
	if ds.metrics != nil {
		ds.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", "csv")))
	}
	return ds.csvExporter.Write(ctx, w, filtered)
}

// ExportExcel streams the filtered record set as an XLSX workbook to w
func (ds *DataService) ExportExcel(ctx context.Context, w io.Writer, req FilterRequest) error {
	filtered, err := ds.filtered(ctx, req)
	if err != nil {
		return err
	}
	if ds.metrics != nil {
		ds.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", "xlsx")))
	}
	return ds.excelExporter.Write(ctx, w, filtered)
}

// filtered validates the request, builds the filter and applies it
func (ds *DataService) filtered(ctx context.Context, req FilterRequest) ([]domain.SalaryRecord, error) {
	if err := ds.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, err.Error())
	}
	if len(ds.table) == 0 {
		return nil, ErrDatasetNotLoaded
	}

	start := time.Now()
	filter := ds.buildFilter(req)
	filtered := filter.Apply(ds.table)
	elapsed := time.Since(start)

	if ds.metrics != nil {
		ds.metrics.FilterEvaluations.Add(ctx, 1)
		ds.metrics.FilterDuration.Record(ctx, elapsed.Seconds())
	}

	ds.logger.DebugContext(ctx, "filter applied",
		slog.Int("input_count", len(ds.table)),
		slog.Int("output_count", len(filtered)),
		slog.Duration("elapsed", elapsed))

	return filtered, nil
}

// buildFilter translates a request into the filter engine's exact-match
// sets, defaulting each omitted field to all observed values.
func (ds *DataService) buildFilter(req FilterRequest) dataprocessing.Filter {
	filter := dataprocessing.DefaultFilter(ds.table)

	if len(req.ExperienceLevels) > 0 {
		filter.ExperienceLevels = make(map[domain.ExperienceLevel]bool, len(req.ExperienceLevels))
		for _, level := range req.ExperienceLevels {
			filter.ExperienceLevels[domain.ExperienceLevel(level)] = true
		}
	}
	if len(req.EmploymentTypes) > 0 {
		filter.EmploymentTypes = make(map[domain.EmploymentType]bool, len(req.EmploymentTypes))
		for _, typ := range req.EmploymentTypes {
			filter.EmploymentTypes[domain.EmploymentType(typ)] = true
		}
	}
	if len(req.CompanySizes) > 0 {
		filter.CompanySizes = make(map[domain.CompanySize]bool, len(req.CompanySizes))
		for _, size := range req.CompanySizes {
			filter.CompanySizes[domain.CompanySize(size)] = true
		}
	}
	if len(req.Countries) > 0 {
		filter.Countries = make(map[string]bool, len(req.Countries))
		for _, country := range req.Countries {
			filter.Countries[strings.ToUpper(country)] = true
		}
	}
	if len(req.Years) > 0 {
		filter.Years = make(map[int]bool, len(req.Years))
		for _, year := range req.Years {
			filter.Years[year] = true
		}
	}
	filter.RemoteMin = req.RemoteMin
	filter.RemoteMax = req.RemoteMax

	return filter
}

// observedOptions collects the sorted distinct values per filterable field
func observedOptions(table []domain.SalaryRecord) domain.FilterOptions {
	experience := make(map[domain.ExperienceLevel]bool)
	employment := make(map[domain.EmploymentType]bool)
	sizes := make(map[domain.CompanySize]bool)
	countries := make(map[string]bool)
	years := make(map[int]bool)

	for _, r := range table {
		experience[r.ExperienceLevel] = true
		employment[r.EmploymentType] = true
		sizes[r.CompanySize] = true
		countries[r.EmployeeResidence] = true
		years[r.WorkYear] = true
	}

	options := domain.FilterOptions{
		RemoteRatioMin: 0,
		RemoteRatioMax: 100,
	}
	for level := range experience {
		options.ExperienceLevels = append(options.ExperienceLevels, level)
	}
	for typ := range employment {
		options.EmploymentTypes = append(options.EmploymentTypes, typ)
	}
	for size := range sizes {
		options.CompanySizes = append(options.CompanySizes, size)
	}
	for country := range countries {
		options.Countries = append(options.Countries, country)
	}
	for year := range years {
		options.Years = append(options.Years, year)
	}

	sort.Slice(options.ExperienceLevels, func(i, j int) bool { return options.ExperienceLevels[i] < options.ExperienceLevels[j] })
	sort.Slice(options.EmploymentTypes, func(i, j int) bool { return options.EmploymentTypes[i] < options.EmploymentTypes[j] })
	sort.Slice(options.CompanySizes, func(i, j int) bool { return options.CompanySizes[i] < options.CompanySizes[j] })
	sort.Strings(options.Countries)
	sort.Ints(options.Years)

	return options
}

// countAggregation records an aggregation computation in the business metrics
func (ds *DataService) countAggregation(ctx context.Context, kind string) {
	if ds.metrics != nil {
		ds.metrics.AggregationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("aggregation", kind)))
	}
}
