package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url" binding:"omitempty,url"`
}

// JobRequest creates or replaces a job posting.
type JobRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	JobType             string   `json:"jobType" binding:"omitempty,oneof=Full-Time Part-Time Internship Remote Contract"`
	ExperienceLevel     string   `json:"experienceLevel" binding:"omitempty,oneof=Junior Mid-Level Senior Lead Executive"`
	HardSkills          []string `json:"hardSkills" binding:"dive,required"`
	SoftSkills          []string `json:"softSkills" binding:"dive,required"`
	SalaryRange         string   `json:"salaryRange"`
	GenderPreference    string   `json:"genderPreference" binding:"omitempty,oneof=All Male Female Other"`
	AgeCategory         []string `json:"ageCategory" binding:"dive,oneof='up to 20' 21-30 31-40 41-50 51+"`
	IsDisabilityAllowed bool     `json:"isDisabilityAllowed"`
	IsRemote            bool     `json:"isRemote"`
	IsPublished         bool     `json:"isPublished"`
	Lat                 *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng                 *float64 `json:"lng" binding:"omitempty,longitude"`
	StateName           string   `json:"stateName"`
	CountryName         string   `json:"countryName"`
}

type JobListQuery struct {
	ListQuery
	JobType string `form:"jobType"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APPLIED REVIEWING INTERVIEW OFFER REJECTED"`
}

type ApplyResponse struct {
	Applied bool `json:"applied"`
}

type AppliedStatusResponse struct {
	HasApplied bool `json:"hasApplied"`
}

type FavoriteStatusResponse struct {
	IsFavorite bool `json:"isFavorite"`
}
