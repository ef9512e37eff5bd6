package dtos

// JobAnalysisQuery carries the job dashboard filters. Empty fields do not
// filter. Remote and DisabilityAllowed are tri-state.
type JobAnalysisQuery struct {
	JobType           string   `form:"jobType"`
	ExperienceLevel   string   `form:"experienceLevel"`
	SalaryRange       string   `form:"salaryRange"`
	Location          string   `form:"location"`
	Skill             string   `form:"skill"`
	AgeCategory       string   `form:"ageCategory"`
	CompanyID         string   `form:"companyId" binding:"omitempty,uuid"`
	Gender            []string `form:"gender" binding:"dive,oneof=All Male Female Other"`
	Remote            *bool    `form:"remote"`
	DisabilityAllowed *bool    `form:"disabilityAllowed"`
	Query             string   `form:"q"`
}

// ResumeAnalysisQuery carries the candidate dashboard filters.
type ResumeAnalysisQuery struct {
	Category   string `form:"category"`
	JobType    string `form:"jobType"`
	Disability string `form:"disability"`
	Location   string `form:"location"`
	Skill      string `form:"skill"`
	MinAge     *int   `form:"minAge" binding:"omitempty,min=0"`
	MaxAge     *int   `form:"maxAge" binding:"omitempty,min=0"`
}
