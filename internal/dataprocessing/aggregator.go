package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"salarypulse/internal/errors"
	"salarypulse/pkg/contracts/domain"
)

// Summarize computes the scalar salary statistics over a filtered set.
// An empty set has no defined mean, min or max; it returns ErrEmptyAggregate
// so the caller can render an explicit "no data" state instead of a NaN.
func Summarize(filtered []domain.SalaryRecord) (domain.SalarySummary, error) {
	if len(filtered) == 0 {
		return domain.SalarySummary{}, fmt.Errorf("summarize: %w", errors.ErrEmptyAggregate)
	}

	summary := domain.SalarySummary{
		Count:  len(filtered),
		MinUSD: math.Inf(1),
		MaxUSD: math.Inf(-1),
	}

	var sum float64
	for _, r := range filtered {
		sum += r.SalaryUSD
		if r.SalaryUSD < summary.MinUSD {
			summary.MinUSD = r.SalaryUSD
		}
		if r.SalaryUSD > summary.MaxUSD {
			summary.MaxUSD = r.SalaryUSD
		}
	}
	summary.MeanUSD = sum / float64(len(filtered))

	summary.Formatted.Mean = FormatUSD(summary.MeanUSD)
	summary.Formatted.Min = FormatUSD(summary.MinUSD)
	summary.Formatted.Max = FormatUSD(summary.MaxUSD)

	return summary, nil
}

// YearlyMeans groups the filtered set by work year and computes the mean
// salary per year, ordered by ascending year.
func YearlyMeans(filtered []domain.SalaryRecord) []domain.YearlyMean {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range filtered {
		sums[r.WorkYear] += r.SalaryUSD
		counts[r.WorkYear]++
	}

	years := make([]int, 0, len(sums))
	for year := range sums {
		years = append(years, year)
	}
	sort.Ints(years)

	series := make([]domain.YearlyMean, 0, len(years))
	for _, year := range years {
		series = append(series, domain.YearlyMean{
			WorkYear: year,
			MeanUSD:  sums[year] / float64(counts[year]),
			Count:    counts[year],
		})
	}
	return series
}

// DefaultSalaryBins is the bin count of the dashboard's salary histogram
const DefaultSalaryBins = 50

// SalaryDistribution computes fixed-width bin counts of salary_in_usd over
// the filtered set. The bins partition the observed [min, max] range; when
// every salary is identical a single bin holds the whole set. An empty set
// has no range and returns ErrEmptyAggregate.
func SalaryDistribution(filtered []domain.SalaryRecord, bins int) ([]domain.SalaryBin, error) {
	if len(filtered) == 0 {
		return nil, fmt.Errorf("salary distribution: %w", errors.ErrEmptyAggregate)
	}
	if bins < 1 {
		bins = DefaultSalaryBins
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, r := range filtered {
		if r.SalaryUSD < min {
			min = r.SalaryUSD
		}
		if r.SalaryUSD > max {
			max = r.SalaryUSD
		}
	}

	if min == max {
		return []domain.SalaryBin{{LowerUSD: min, UpperUSD: max, Count: len(filtered)}}, nil
	}

	width := (max - min) / float64(bins)
	result := make([]domain.SalaryBin, bins)
	for i := range result {
		result[i].LowerUSD = min + float64(i)*width
		result[i].UpperUSD = min + float64(i+1)*width
	}
	// Float width can leave the last computed bound just short of max
	result[bins-1].UpperUSD = max

	for _, r := range filtered {
		idx := int((r.SalaryUSD - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Count++
	}
	return result, nil
}

// CompanySizeMeans groups by company-size label, one row per observed label.
// Rows are ordered by label for deterministic output.
func CompanySizeMeans(filtered []domain.SalaryRecord) []domain.GroupMean {
	return groupMeans(filtered, func(r domain.SalaryRecord) (string, bool) {
		return string(r.CompanySize), true
	})
}

// RemoteGroupMeans buckets each record's remote ratio and groups by bucket.
// Records outside every bucket (ratio 0) are excluded; buckets with no
// members are absent from the result rather than zero-filled.
func RemoteGroupMeans(filtered []domain.SalaryRecord) []domain.GroupMean {
	means := groupMeans(filtered, func(r domain.SalaryRecord) (string, bool) {
		group := r.RemoteGroup()
		return string(group), group != domain.RemoteGroupNone
	})

	// Bucket labels sort naturally in their numeric order except that the
	// generic label sort above is lexicographic; reorder by bucket bounds.
	order := map[string]int{
		string(domain.RemoteGroup0To25):   0,
		string(domain.RemoteGroup26To50):  1,
		string(domain.RemoteGroup51To75):  2,
		string(domain.RemoteGroup76To100): 3,
	}
	sort.Slice(means, func(i, j int) bool {
		return order[means[i].Label] < order[means[j].Label]
	})
	return means
}

// CountryMeans groups by the derived ISO alpha-3 country code. Records whose
// residence code had no known mapping are excluded from this aggregation
// only; they still count everywhere else.
func CountryMeans(filtered []domain.SalaryRecord) []domain.GroupMean {
	return groupMeans(filtered, func(r domain.SalaryRecord) (string, bool) {
		return r.CountryISO3, r.CountryISO3 != ""
	})
}

// ExperienceDistributions computes per-experience-level salary spread
func ExperienceDistributions(filtered []domain.SalaryRecord) []domain.GroupDistribution {
	return groupDistributions(filtered, func(r domain.SalaryRecord) string {
		return string(r.ExperienceLevel)
	})
}

// EmploymentDistributions computes per-employment-type salary spread
func EmploymentDistributions(filtered []domain.SalaryRecord) []domain.GroupDistribution {
	return groupDistributions(filtered, func(r domain.SalaryRecord) string {
		return string(r.EmploymentType)
	})
}

// groupMeans is the shared reduction behind every group-by-mean aggregation:
// unweighted arithmetic mean of salary_in_usd within each group. The key
// function may exclude a record by returning ok=false.
func groupMeans(filtered []domain.SalaryRecord, key func(domain.SalaryRecord) (string, bool)) []domain.GroupMean {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range filtered {
		k, ok := key(r)
		if !ok {
			continue
		}
		sums[k] += r.SalaryUSD
		counts[k]++
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	means := make([]domain.GroupMean, 0, len(labels))
	for _, label := range labels {
		means = append(means, domain.GroupMean{
			Label:   label,
			MeanUSD: sums[label] / float64(counts[label]),
			Count:   counts[label],
		})
	}
	return means
}

// groupDistributions computes count/mean/min/max of salary per group label
func groupDistributions(filtered []domain.SalaryRecord, key func(domain.SalaryRecord) string) []domain.GroupDistribution {
	groups := make(map[string]*domain.GroupDistribution)
	sums := make(map[string]float64)

	for _, r := range filtered {
		k := key(r)
		g, ok := groups[k]
		if !ok {
			g = &domain.GroupDistribution{
				Label:  k,
				MinUSD: math.Inf(1),
				MaxUSD: math.Inf(-1),
			}
			groups[k] = g
		}
		g.Count++
		sums[k] += r.SalaryUSD
		if r.SalaryUSD < g.MinUSD {
			g.MinUSD = r.SalaryUSD
		}
		if r.SalaryUSD > g.MaxUSD {
			g.MaxUSD = r.SalaryUSD
		}
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	result := make([]domain.GroupDistribution, 0, len(labels))
	for _, label := range labels {
		g := groups[label]
		g.MeanUSD = sums[label] / float64(g.Count)
		result = append(result, *g)
	}
	return result
}

// FormatUSD renders a salary as currency with thousands separators,
// rounded to whole dollars, e.g. 1234567.8 -> "$1,234,568".
func FormatUSD(amount float64) string {
	rounded := int64(math.Round(amount))

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	digits := fmt.Sprintf("%d", rounded)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
