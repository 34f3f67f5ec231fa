package dataprocessing

import (
	"salarypulse/pkg/contracts/domain"
)

// Filter is the conjunction of predicates applied to the normalized table.
// Every set is exact-match; there is no implicit "no filter" default — a
// caller wanting an unfiltered view must populate each set with all observed
// values (see DefaultFilter). An empty set therefore matches nothing.
type Filter struct {
	ExperienceLevels map[domain.ExperienceLevel]bool
	EmploymentTypes  map[domain.EmploymentType]bool
	CompanySizes     map[domain.CompanySize]bool
	Countries        map[string]bool
	Years            map[int]bool
	RemoteMin        int
	RemoteMax        int
}

// DefaultFilter builds the "all observed values" filter for the table:
// applying it returns the table unchanged.
func DefaultFilter(table []domain.SalaryRecord) Filter {
	f := Filter{
		ExperienceLevels: make(map[domain.ExperienceLevel]bool),
		EmploymentTypes:  make(map[domain.EmploymentType]bool),
		CompanySizes:     make(map[domain.CompanySize]bool),
		Countries:        make(map[string]bool),
		Years:            make(map[int]bool),
		RemoteMin:        0,
		RemoteMax:        100,
	}
	for _, r := range table {
		f.ExperienceLevels[r.ExperienceLevel] = true
		f.EmploymentTypes[r.EmploymentType] = true
		f.CompanySizes[r.CompanySize] = true
		f.Countries[r.EmployeeResidence] = true
		f.Years[r.WorkYear] = true
	}
	return f
}

// Matches reports whether a single record satisfies every predicate
func (f Filter) Matches(r domain.SalaryRecord) bool {
	if !f.ExperienceLevels[r.ExperienceLevel] {
		return false
	}
	if !f.EmploymentTypes[r.EmploymentType] {
		return false
	}
	if !f.CompanySizes[r.CompanySize] {
		return false
	}
	if r.RemoteRatio < f.RemoteMin || r.RemoteRatio > f.RemoteMax {
		return false
	}
	if !f.Countries[r.EmployeeResidence] {
		return false
	}
	return f.Years[r.WorkYear]
}

// Apply returns the subsequence of table matching the filter, in the
// table's order. Zero matches is a valid, non-error result.
func (f Filter) Apply(table []domain.SalaryRecord) []domain.SalaryRecord {
	filtered := make([]domain.SalaryRecord, 0, len(table))
	for _, r := range table {
		if f.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
