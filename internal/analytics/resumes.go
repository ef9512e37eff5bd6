package analytics

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ResumeRecord is the flattened resume row the candidate dashboard works on.
type ResumeRecord struct {
	ID              string   `json:"id"`
	CandidateID     string   `json:"candidateId"`
	Title           string   `json:"title"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	JobTitle        string   `json:"jobTitle"`
	City            string   `json:"city"`
	Country         string   `json:"country"`
	Email           string   `json:"email"`
	HardSkills      []string `json:"hardSkills"`
	SoftSkills      []string `json:"softSkills"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Disability      string   `json:"disability"`
	Gender          string   `json:"gender"`
	ExperienceLevel string   `json:"experienceLevel"`
	JobType         string   `json:"jobType"`
	Age             *int     `json:"age"`
	SkillType       string   `json:"skillType"`
}

// AgeRange is an inclusive age interval.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r AgeRange) contains(age int) bool { return age >= r.Min && age <= r.Max }

// ResumeFilter holds the candidate dashboard criteria. Zero values do not
// filter.
type ResumeFilter struct {
	Category string
	JobType  string
	// Disability is compared case-insensitively, so "YES" matches "Yes".
	Disability string
	// Location matches either the country or the city.
	Location string
	Skill    string
	// Resumes without an age never match an age range.
	Ages *AgeRange
}

// Match reports whether r satisfies every set criterion.
func (f ResumeFilter) Match(r ResumeRecord) bool {
	if f.Category != "" && r.SkillType != f.Category {
		return false
	}
	if f.JobType != "" && r.JobType != f.JobType {
		return false
	}
	if f.Disability != "" && !strings.EqualFold(r.Disability, f.Disability) {
		return false
	}
	if f.Location != "" && r.Country != f.Location && r.City != f.Location {
		return false
	}
	if f.Skill != "" && !slices.Contains(r.SoftSkills, f.Skill) && !slices.Contains(r.HardSkills, f.Skill) {
		return false
	}
	if f.Ages != nil && (r.Age == nil || !f.Ages.contains(*r.Age)) {
		return false
	}
	return true
}

// FilterResumes returns the resumes matching f, in input order.
func FilterResumes(resumes []ResumeRecord, f ResumeFilter) []ResumeRecord {
	out := make([]ResumeRecord, 0, len(resumes))
	for _, r := range resumes {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func CategoryCounts(resumes []ResumeRecord) []Slice {
	c := newCounter()
	for _, r := range resumes {
		if r.SkillType != "" {
			c.add(r.SkillType)
		}
	}
	return c.slices()
}

func ResumeJobTypeCounts(resumes []ResumeRecord) []Slice {
	c := newCounter()
	for _, r := range resumes {
		if r.JobType != "" {
			c.add(r.JobType)
		}
	}
	return c.slices()
}

// DisabilityCount is the YES/NO split of the disability widget.
type DisabilityCount struct {
	Yes int `json:"YES"`
	No  int `json:"NO"`
}

func ResumeDisabilityCounts(resumes []ResumeRecord) DisabilityCount {
	var out DisabilityCount
	for _, r := range resumes {
		switch {
		case strings.EqualFold(r.Disability, "yes"):
			out.Yes++
		case strings.EqualFold(r.Disability, "no"):
			out.No++
		}
	}
	return out
}

// LocationGroup is one map marker: every resume sharing a coordinate.
type LocationGroup struct {
	Key     string   `json:"key"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	City    string   `json:"city"`
	Country string   `json:"country"`
	Label   string   `json:"label"`
	Count   int      `json:"count"`
	Resumes []string `json:"resumeIds"`
}

// LocationGroups groups resumes by "lat,lng" in first-seen order. Resumes
// without coordinates are skipped. The label comes from the first resume of a
// group.
func LocationGroups(resumes []ResumeRecord) []LocationGroup {
	index := make(map[string]int)
	var out []LocationGroup
	for _, r := range resumes {
		if r.Lat == nil || r.Lng == nil {
			continue
		}
		key := fmt.Sprintf("%g,%g", *r.Lat, *r.Lng)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, LocationGroup{
				Key:     key,
				Lat:     *r.Lat,
				Lng:     *r.Lng,
				City:    r.City,
				Country: r.Country,
				Label:   joinNonEmpty(", ", r.City, r.Country),
			})
		}
		out[i].Count++
		out[i].Resumes = append(out[i].Resumes, r.ID)
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

const (
	minFontSize   = 14
	fontSizeRange = 24
)

// CloudWord is a word of a skills cloud with its rendered size.
type CloudWord struct {
	Text     string  `json:"text"`
	Value    int     `json:"value"`
	FontSize float64 `json:"fontSize"`
}

// SkillCloud counts skills and keeps the n most common. Font sizes are
// scaled linearly between 14px for the least and 38px for the most common
// kept word.
func SkillCloud(skills []string, n int) []CloudWord {
	c := newCounter()
	for _, s := range skills {
		if s != "" {
			c.add(s)
		}
	}
	counts := top(sortByValueDesc(c.slices()), n)
	if len(counts) == 0 {
		return []CloudWord{}
	}

	lo, hi := counts[len(counts)-1].Value, counts[0].Value
	spread := hi - lo
	if spread == 0 {
		spread = 1
	}
	out := make([]CloudWord, 0, len(counts))
	for _, s := range counts {
		norm := float64(s.Value-lo) / float64(spread)
		out = append(out, CloudWord{
			Text:     s.Name,
			Value:    s.Value,
			FontSize: minFontSize + norm*fontSizeRange,
		})
	}
	return out
}

// AgeBucket is the number of resumes of one exact age.
type AgeBucket struct {
	Age   int `json:"age"`
	Count int `json:"count"`
}

// AgeDistribution backs the age slider. Valid is false when no resume has an
// age, in which case the other fields are zero.
type AgeDistribution struct {
	Valid   bool        `json:"valid"`
	Min     int         `json:"min"`
	Max     int         `json:"max"`
	Buckets []AgeBucket `json:"buckets"`
}

// Ages builds one bucket per integer age between the youngest and oldest
// resume, zero counts included.
func Ages(resumes []ResumeRecord) AgeDistribution {
	var ages []int
	for _, r := range resumes {
		if r.Age != nil {
			ages = append(ages, *r.Age)
		}
	}
	if len(ages) == 0 {
		return AgeDistribution{Buckets: []AgeBucket{}}
	}
	sort.Ints(ages)
	lo, hi := ages[0], ages[len(ages)-1]

	buckets := make([]AgeBucket, hi-lo+1)
	for i := range buckets {
		buckets[i].Age = lo + i
	}
	for _, a := range ages {
		buckets[a-lo].Count++
	}
	return AgeDistribution{Valid: true, Min: lo, Max: hi, Buckets: buckets}
}

// CandidateDashboard is everything the candidate analytics page renders.
type CandidateDashboard struct {
	TotalResumes int             `json:"totalResumes"`
	Resumes      []ResumeRecord  `json:"resumes"`
	Categories   []Slice         `json:"categories"`
	JobTypes     []Slice         `json:"jobTypes"`
	Disability   DisabilityCount `json:"disability"`
	Locations    []LocationGroup `json:"locations"`
	HardSkills   []CloudWord     `json:"hardSkills"`
	SoftSkills   []CloudWord     `json:"softSkills"`
	Ages         AgeDistribution `json:"ages"`
	// InRange is the number of aged resumes inside the active age range, or
	// all aged resumes when no range is set.
	InRange int `json:"inRange"`
}

const topCloudSkills = 30

// BuildCandidateDashboard filters resumes and computes every chart. The
// disability and age widgets use the unfiltered set.
func BuildCandidateDashboard(resumes []ResumeRecord, f ResumeFilter) CandidateDashboard {
	filtered := FilterResumes(resumes, f)

	var hard, soft []string
	for _, r := range filtered {
		hard = append(hard, r.HardSkills...)
		soft = append(soft, r.SoftSkills...)
	}

	ages := Ages(resumes)
	inRange := 0
	for _, r := range resumes {
		if r.Age != nil && (f.Ages == nil || f.Ages.contains(*r.Age)) {
			inRange++
		}
	}

	return CandidateDashboard{
		TotalResumes: len(filtered),
		Resumes:      filtered,
		Categories:   CategoryCounts(filtered),
		JobTypes:     ResumeJobTypeCounts(filtered),
		Disability:   ResumeDisabilityCounts(resumes),
		Locations:    LocationGroups(filtered),
		HardSkills:   SkillCloud(hard, topCloudSkills),
		SoftSkills:   SkillCloud(soft, topCloudSkills),
		Ages:         ages,
		InRange:      inRange,
	}
}
