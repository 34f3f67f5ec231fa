package http

import (
	"context"
	"io"

	"salarypulse/internal/services"
	"salarypulse/pkg/contracts/domain"
)

// DataServiceInterface defines the interface for salary data operations
type DataServiceInterface interface {
	GetFilterOptions(ctx context.Context) (domain.FilterOptions, error)
	GetSummary(ctx context.Context, req services.FilterRequest) (domain.SalarySummary, error)
	GetYearlyMeans(ctx context.Context, req services.FilterRequest) ([]domain.YearlyMean, error)
	GetSalaryDistribution(ctx context.Context, req services.FilterRequest) ([]domain.SalaryBin, error)
	GetCompanySizeMeans(ctx context.Context, req services.FilterRequest) ([]domain.GroupMean, error)
	GetRemoteGroupMeans(ctx context.Context, req services.FilterRequest) ([]domain.GroupMean, error)
	GetCountryMeans(ctx context.Context, req services.FilterRequest) ([]domain.GroupMean, error)
	GetExperienceDistributions(ctx context.Context, req services.FilterRequest) ([]domain.GroupDistribution, error)
	GetEmploymentDistributions(ctx context.Context, req services.FilterRequest) ([]domain.GroupDistribution, error)
	GetRecords(ctx context.Context, req services.FilterRequest) ([]domain.SalaryRecord, error)
	ExportCSV(ctx context.Context, w io.Writer, req services.FilterRequest) error
	ExportExcel(ctx context.Context, w io.Writer, req services.FilterRequest) error
}
