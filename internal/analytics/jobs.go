package analytics

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// JobRecord is the flattened job row the job dashboard works on.
type JobRecord struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	CompanyID           string    `json:"companyId"`
	CompanyName         string    `json:"companyName"`
	JobType             string    `json:"jobType"`
	ExperienceLevel     string    `json:"experienceLevel"`
	HardSkills          []string  `json:"hardSkills"`
	SoftSkills          []string  `json:"softSkills"`
	SalaryRange         string    `json:"salaryRange"`
	GenderPreference    string    `json:"genderPreference"`
	AgeCategory         []string  `json:"ageCategory"`
	IsDisabilityAllowed bool      `json:"isDisabilityAllowed"`
	IsRemote            bool      `json:"isRemote"`
	IsPublished         bool      `json:"isPublished"`
	Lat                 *float64  `json:"lat"`
	Lng                 *float64  `json:"lng"`
	StateName           string    `json:"stateName"`
	CountryName         string    `json:"countryName"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Location is "State, Country", or "" unless both parts are known.
func (j JobRecord) Location() string {
	if j.StateName == "" || j.CountryName == "" {
		return ""
	}
	return j.StateName + ", " + j.CountryName
}

func (j JobRecord) gender() string {
	if j.GenderPreference == "" {
		return GenderAll
	}
	return j.GenderPreference
}

const (
	GenderAll = "All"

	NotSpecified = "Not Specified"

	DisabilityAllowed    = "Disability Allowed"
	DisabilityNotAllowed = "Disability Not Allowed"
)

var experienceBuckets = map[string]string{
	"Junior":    "Fresher",
	"Mid-Level": "Intermediate",
	"Senior":    "Senior",
	"Lead":      "Senior",
	"Executive": "Senior",
}

// ExperienceBucket maps a job's experience level onto the coarse
// Fresher/Intermediate/Senior scale. Unknown levels are Intermediate.
func ExperienceBucket(level string) string {
	if b, ok := experienceBuckets[level]; ok {
		return b
	}
	return "Intermediate"
}

// JobFilter holds the job dashboard criteria. Zero values do not filter.
type JobFilter struct {
	JobType string
	// ExperienceLevel matches either the raw level or its bucket.
	ExperienceLevel string
	SalaryRange     string
	Location        string
	CompanyID       string
	Skill           string
	AgeCategory     string
	// Genders matches the job preference, with no preference counting as "All".
	Genders           []string
	Remote            *bool
	DisabilityAllowed *bool
	Query             string
}

// Match reports whether j satisfies every set criterion.
func (f JobFilter) Match(j JobRecord) bool {
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel &&
		ExperienceBucket(j.ExperienceLevel) != f.ExperienceLevel {
		return false
	}
	if f.SalaryRange != "" && j.SalaryRange != f.SalaryRange {
		return false
	}
	if f.Location != "" && j.StateName+", "+j.CountryName != f.Location {
		return false
	}
	if f.CompanyID != "" && j.CompanyID != f.CompanyID {
		return false
	}
	if f.Skill != "" && !slices.Contains(j.HardSkills, f.Skill) && !slices.Contains(j.SoftSkills, f.Skill) {
		return false
	}
	if f.AgeCategory != "" && !slices.Contains(j.AgeCategory, f.AgeCategory) {
		return false
	}
	if len(f.Genders) > 0 && !slices.Contains(f.Genders, j.gender()) {
		return false
	}
	if f.Remote != nil && j.IsRemote != *f.Remote {
		return false
	}
	if f.DisabilityAllowed != nil && j.IsDisabilityAllowed != *f.DisabilityAllowed {
		return false
	}
	if f.Query != "" {
		return j.matchesQuery(strings.ToLower(f.Query))
	}
	return true
}

func (j JobRecord) matchesQuery(q string) bool {
	for _, field := range []string{
		j.Title, j.CompanyName, j.JobType, j.ExperienceLevel,
		j.SalaryRange, j.StateName, j.CountryName,
	} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, s := range j.HardSkills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	for _, s := range j.SoftSkills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// FilterJobs returns the jobs matching f, in input order.
func FilterJobs(jobs []JobRecord, f JobFilter) []JobRecord {
	out := make([]JobRecord, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

var knownJobTypes = []string{"Full-Time", "Part-Time", "Internship"}

// JobTypeCounts buckets job types into Full-Time, Part-Time, Internship and
// Other. Jobs without a type are skipped; empty buckets are dropped.
func JobTypeCounts(jobs []JobRecord) []Slice {
	c := newCounter(append(slices.Clone(knownJobTypes), "Other")...)
	for _, j := range jobs {
		if j.JobType == "" {
			continue
		}
		if slices.Contains(knownJobTypes, j.JobType) {
			c.add(j.JobType)
		} else {
			c.add("Other")
		}
	}
	return nonZero(c.slices())
}

func ExperienceLevelCounts(jobs []JobRecord) []Slice {
	c := newCounter()
	for _, j := range jobs {
		if j.ExperienceLevel != "" {
			c.add(j.ExperienceLevel)
		}
	}
	return c.slices()
}

// AgeCategoryCounts counts each age category a job accepts.
func AgeCategoryCounts(jobs []JobRecord) []Slice {
	c := newCounter()
	for _, j := range jobs {
		for _, cat := range j.AgeCategory {
			c.add(cat)
		}
	}
	return c.slices()
}

// SalaryRangeCounts counts salary ranges, largest first. Jobs without a
// range count as "Not Specified", which is always present.
func SalaryRangeCounts(jobs []JobRecord) []Slice {
	c := newCounter(NotSpecified)
	for _, j := range jobs {
		if j.SalaryRange == "" {
			c.add(NotSpecified)
		} else {
			c.add(j.SalaryRange)
		}
	}
	return sortByValueDesc(c.slices())
}

// GenderPreferenceCounts counts preferences, with no preference as "All".
// Empty buckets are dropped.
func GenderPreferenceCounts(jobs []JobRecord) []Slice {
	c := newCounter(GenderAll, "Male", "Female", "Other")
	for _, j := range jobs {
		c.add(j.gender())
	}
	return nonZero(c.slices())
}

func DisabilityCounts(jobs []JobRecord) []Slice {
	allowed := 0
	for _, j := range jobs {
		if j.IsDisabilityAllowed {
			allowed++
		}
	}
	return []Slice{
		{Name: DisabilityAllowed, Value: allowed},
		{Name: DisabilityNotAllowed, Value: len(jobs) - allowed},
	}
}

// LocationCounts returns the n most common "State, Country" locations.
func LocationCounts(jobs []JobRecord, n int) []Slice {
	c := newCounter()
	for _, j := range jobs {
		if loc := j.Location(); loc != "" {
			c.add(loc)
		}
	}
	return top(sortByValueDesc(c.slices()), n)
}

// TimelinePoint is one day of postings.
type TimelinePoint struct {
	Date      string `json:"date"`
	NewJobs   int    `json:"newJobs"`
	TotalJobs int    `json:"totalJobs"`
}

// Timeline groups jobs by UTC creation day, ascending, with a running total.
func Timeline(jobs []JobRecord) []TimelinePoint {
	byDate := make(map[string]int)
	for _, j := range jobs {
		byDate[j.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]TimelinePoint, 0, len(dates))
	total := 0
	for _, d := range dates {
		total += byDate[d]
		out = append(out, TimelinePoint{Date: d, NewJobs: byDate[d], TotalJobs: total})
	}
	return out
}

const (
	SkillHard = "hard"
	SkillSoft = "soft"
)

// SkillCount is one word of the skills cloud.
type SkillCount struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
	Type  string `json:"type"`
}

// SkillCounts counts hard and soft skills and returns the n most common. A
// skill keeps the type it was first seen with.
func SkillCounts(jobs []JobRecord, n int) []SkillCount {
	index := make(map[string]int)
	var out []SkillCount
	add := func(skill, typ string) {
		if i, ok := index[skill]; ok {
			out[i].Value++
			return
		}
		index[skill] = len(out)
		out = append(out, SkillCount{Text: skill, Value: 1, Type: typ})
	}
	for _, j := range jobs {
		for _, s := range j.HardSkills {
			add(s, SkillHard)
		}
		for _, s := range j.SoftSkills {
			add(s, SkillSoft)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CompanyOption is an entry of the company filter dropdown.
type CompanyOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JobCount int    `json:"jobCount"`
}

// JobDashboard is everything the company analytics page renders.
type JobDashboard struct {
	// TotalJobs counts every job; MatchingJobs only those passing the filter.
	TotalJobs        int             `json:"totalJobs"`
	MatchingJobs     int             `json:"matchingJobs"`
	Jobs             []JobRecord     `json:"jobs"`
	Companies        []CompanyOption `json:"companies"`
	JobTypes         []Slice         `json:"jobTypes"`
	ExperienceLevels []Slice         `json:"experienceLevels"`
	AgeCategories    []Slice         `json:"ageCategories"`
	SalaryRanges     []Slice         `json:"salaryRanges"`
	GenderPreference []Slice         `json:"genderPreference"`
	Disability       []Slice         `json:"disability"`
	TopLocations     []Slice         `json:"topLocations"`
	LocationMap      []Slice         `json:"locationMap"`
	Timeline         []TimelinePoint `json:"timeline"`
	Skills           []SkillCount    `json:"skills"`
}

const (
	topLocationsPie = 10
	topLocationsBar = 15
	topJobSkills    = 50
)

// BuildJobDashboard filters jobs and computes every chart over the filtered
// set. companies fills the company dropdown as given.
func BuildJobDashboard(jobs []JobRecord, companies []CompanyOption, f JobFilter) JobDashboard {
	filtered := FilterJobs(jobs, f)
	if companies == nil {
		companies = []CompanyOption{}
	}
	return JobDashboard{
		TotalJobs:        len(jobs),
		MatchingJobs:     len(filtered),
		Jobs:             filtered,
		Companies:        companies,
		JobTypes:         JobTypeCounts(filtered),
		ExperienceLevels: ExperienceLevelCounts(filtered),
		AgeCategories:    AgeCategoryCounts(filtered),
		SalaryRanges:     SalaryRangeCounts(filtered),
		GenderPreference: GenderPreferenceCounts(filtered),
		Disability:       DisabilityCounts(filtered),
		TopLocations:     LocationCounts(filtered, topLocationsPie),
		LocationMap:      LocationCounts(filtered, topLocationsBar),
		Timeline:         Timeline(filtered),
		Skills:           SkillCounts(filtered, topJobSkills),
	}
}
