package analytics

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// jobCSVRow is one exported line of the jobs table.
type jobCSVRow struct {
	Title             string `csv:"Title"`
	Company           string `csv:"Company"`
	JobType           string `csv:"Job Type"`
	ExperienceLevel   string `csv:"Experience Level"`
	SalaryRange       string `csv:"Salary Range"`
	Location          string `csv:"Location"`
	HardSkills        string `csv:"Hard Skills"`
	SoftSkills        string `csv:"Soft Skills"`
	AgeCategory       string `csv:"Age Category"`
	GenderPreference  string `csv:"Gender Preference"`
	Remote            string `csv:"Remote"`
	DisabilityAllowed string `csv:"Disability Allowed"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func toCSVRow(j JobRecord) jobCSVRow {
	return jobCSVRow{
		Title:             j.Title,
		Company:           j.CompanyName,
		JobType:           j.JobType,
		ExperienceLevel:   j.ExperienceLevel,
		SalaryRange:       orDefault(j.SalaryRange, "Not specified"),
		Location:          j.StateName + ", " + j.CountryName,
		HardSkills:        strings.Join(j.HardSkills, ", "),
		SoftSkills:        strings.Join(j.SoftSkills, ", "),
		AgeCategory:       strings.Join(j.AgeCategory, ", "),
		GenderPreference:  j.gender(),
		Remote:            yesNo(j.IsRemote),
		DisabilityAllowed: yesNo(j.IsDisabilityAllowed),
	}
}

// ExportJobsCSV writes jobs as CSV with a header line.
func ExportJobsCSV(w io.Writer, jobs []JobRecord) error {
	rows := make([]*jobCSVRow, 0, len(jobs))
	for _, j := range jobs {
		row := toCSVRow(j)
		rows = append(rows, &row)
	}
	return gocsv.Marshal(rows, w)
}
