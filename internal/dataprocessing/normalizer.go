package dataprocessing

import (
	"context"
	"log/slog"

	"github.com/biter777/countries"

	"salarypulse/pkg/contracts/domain"
)

// Normalizer rewrites raw dataset rows into normalized salary records:
// categorical codes become labels and the ISO alpha-3 country code is
// derived from the residence alpha-2 code.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Normalize maps every raw record to its normalized form. Unrecognized
// categorical codes become Unknown labels and unknown residence codes leave
// CountryISO3 empty; neither aborts the pass.
func (n *Normalizer) Normalize(ctx context.Context, raw []RawRecord) []domain.SalaryRecord {
	records := make([]domain.SalaryRecord, 0, len(raw))

	unknownCodes := 0
	unmappedCountries := 0

	for _, r := range raw {
		record := domain.SalaryRecord{
			WorkYear:          r.WorkYear,
			ExperienceLevel:   domain.ParseExperienceLevel(r.ExperienceCode),
			EmploymentType:    domain.ParseEmploymentType(r.EmploymentCode),
			EmployeeResidence: r.EmployeeResidence,
			RemoteRatio:       r.RemoteRatio,
			CompanySize:       domain.ParseCompanySize(r.CompanySizeCode),
			SalaryUSD:         r.SalaryUSD,
			CountryISO3:       CountryISO3(r.EmployeeResidence),
		}

		if record.ExperienceLevel == domain.ExperienceUnknown ||
			record.EmploymentType == domain.EmploymentUnknown ||
			record.CompanySize == domain.CompanySizeUnknown {
			unknownCodes++
		}
		if record.CountryISO3 == "" {
			unmappedCountries++
		}

		records = append(records, record)
	}

	n.logger.InfoContext(ctx, "dataset normalized",
		slog.Int("record_count", len(records)),
		slog.Int("unknown_categorical_codes", unknownCodes),
		slog.Int("unmapped_countries", unmappedCountries))

	return records
}

// CountryISO3 resolves an ISO alpha-2 country code to its alpha-3 form.
// Returns the empty string when the code is unknown or malformed.
func CountryISO3(alpha2 string) string {
	country := countries.ByName(alpha2)
	if country == countries.Unknown {
		return ""
	}
	return country.Alpha3()
}
