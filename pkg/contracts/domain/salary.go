package domain

// ExperienceLevel is the normalized experience label for a salary record
type ExperienceLevel string

const (
	ExperienceJunior    ExperienceLevel = "Junior"
	ExperienceMid       ExperienceLevel = "Mid"
	ExperienceSenior    ExperienceLevel = "Senior"
	ExperienceExecutive ExperienceLevel = "Executive"
	ExperienceUnknown   ExperienceLevel = "Unknown"
)

// EmploymentType is the normalized contract-type label
type EmploymentType string

const (
	EmploymentFullTime  EmploymentType = "Full-time"
	EmploymentPartTime  EmploymentType = "Part-time"
	EmploymentContract  EmploymentType = "Contract"
	EmploymentFreelance EmploymentType = "Freelance"
	EmploymentUnknown   EmploymentType = "Unknown"
)

// CompanySize is the normalized company-size label
type CompanySize string

const (
	CompanySizeSmall   CompanySize = "Small"
	CompanySizeMedium  CompanySize = "Medium"
	CompanySizeLarge   CompanySize = "Large"
	CompanySizeUnknown CompanySize = "Unknown"
)

// RemoteGroup is the remote-work bucket derived from RemoteRatio.
// Buckets are half-open on the left over the boundaries [0,25,50,75,100],
// so a ratio of exactly 0 belongs to no bucket.
type RemoteGroup string

const (
	RemoteGroup0To25   RemoteGroup = "0-25"
	RemoteGroup26To50  RemoteGroup = "26-50"
	RemoteGroup51To75  RemoteGroup = "51-75"
	RemoteGroup76To100 RemoteGroup = "76-100"
	RemoteGroupNone    RemoteGroup = ""
)

// ParseExperienceLevel maps a raw dataset code to its label.
// Unrecognized codes map to ExperienceUnknown, never an error.
func ParseExperienceLevel(code string) ExperienceLevel {
	switch code {
	case "EN":
		return ExperienceJunior
	case "MI":
		return ExperienceMid
	case "SE":
		return ExperienceSenior
	case "EX":
		return ExperienceExecutive
	default:
		return ExperienceUnknown
	}
}

// ParseEmploymentType maps a raw dataset code to its label.
func ParseEmploymentType(code string) EmploymentType {
	switch code {
	case "FT":
		return EmploymentFullTime
	case "PT":
		return EmploymentPartTime
	case "CT":
		return EmploymentContract
	case "FL":
		return EmploymentFreelance
	default:
		return EmploymentUnknown
	}
}

// ParseCompanySize maps a raw dataset code to its label.
func ParseCompanySize(code string) CompanySize {
	switch code {
	case "S":
		return CompanySizeSmall
	case "M":
		return CompanySizeMedium
	case "L":
		return CompanySizeLarge
	default:
		return CompanySizeUnknown
	}
}

// BucketRemoteRatio assigns a remote ratio to its RemoteGroup.
// Ratios at or below 0 and above 100 fall outside every bucket and
// return RemoteGroupNone.
func BucketRemoteRatio(ratio int) RemoteGroup {
	switch {
	case ratio > 0 && ratio <= 25:
		return RemoteGroup0To25
	case ratio > 25 && ratio <= 50:
		return RemoteGroup26To50
	case ratio > 50 && ratio <= 75:
		return RemoteGroup51To75
	case ratio > 75 && ratio <= 100:
		return RemoteGroup76To100
	default:
		return RemoteGroupNone
	}
}

// SalaryRecord represents one normalized row of the salary dataset.
// Records are immutable once normalization completes.
type SalaryRecord struct {
	WorkYear          int             `json:"work_year" csv:"work_year" validate:"required,min=2000,max=2100"`
	ExperienceLevel   ExperienceLevel `json:"experience_level" csv:"experience_level"`
	EmploymentType    EmploymentType  `json:"employment_type" csv:"employment_type"`
	EmployeeResidence string          `json:"employee_residence" csv:"employee_residence" validate:"required,len=2"`
	RemoteRatio       int             `json:"remote_ratio" csv:"remote_ratio" validate:"min=0,max=100"`
	CompanySize       CompanySize     `json:"company_size" csv:"company_size"`
	SalaryUSD         float64         `json:"salary_in_usd" csv:"salary_in_usd" validate:"min=0"`

	// CountryISO3 is derived from EmployeeResidence; empty when the
	// alpha-2 code has no known ISO-3166 mapping.
	CountryISO3 string `json:"country_iso3,omitempty" csv:"country_iso3"`
}

// RemoteGroup returns the derived remote-work bucket for the record.
func (r SalaryRecord) RemoteGroup() RemoteGroup {
	return BucketRemoteRatio(r.RemoteRatio)
}

// SalarySummary holds the scalar statistics over a filtered record set
type SalarySummary struct {
	Count     int     `json:"count"`
	MeanUSD   float64 `json:"mean_usd"`
	MinUSD    float64 `json:"min_usd"`
	MaxUSD    float64 `json:"max_usd"`
	Formatted struct {
		Mean string `json:"mean"`
		Min  string `json:"min"`
		Max  string `json:"max"`
	} `json:"formatted"`
}

// YearlyMean is one point of the yearly mean-salary series
type YearlyMean struct {
	WorkYear int     `json:"work_year"`
	MeanUSD  float64 `json:"mean_usd"`
	Count    int     `json:"count"`
}

// GroupMean is one row of a label-keyed group-by-mean aggregation
type GroupMean struct {
	Label   string  `json:"label"`
	MeanUSD float64 `json:"mean_usd"`
	Count   int     `json:"count"`
}

// SalaryBin is one fixed-width bin of the salary distribution histogram.
// Bins partition the observed salary range; the upper bound of the last
// bin is the observed maximum.
type SalaryBin struct {
	LowerUSD float64 `json:"lower_usd"`
	UpperUSD float64 `json:"upper_usd"`
	Count    int     `json:"count"`
}

// GroupDistribution describes per-label salary spread for box-plot style views
type GroupDistribution struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	MeanUSD float64 `json:"mean_usd"`
	MinUSD  float64 `json:"min_usd"`
	MaxUSD  float64 `json:"max_usd"`
}

// FilterOptions lists the distinct observed values per filterable field.
// These are the defaults a client should use to mean "unfiltered".
type FilterOptions struct {
	ExperienceLevels []ExperienceLevel `json:"experience_levels"`
	EmploymentTypes  []EmploymentType  `json:"employment_types"`
	CompanySizes     []CompanySize     `json:"company_sizes"`
	Countries        []string          `json:"countries"`
	Years            []int             `json:"years"`
	RemoteRatioMin   int               `json:"remote_ratio_min"`
	RemoteRatioMax   int               `json:"remote_ratio_max"`
}
