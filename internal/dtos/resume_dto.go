package dtos

// ResumeRequest is the full resume form. Dates are "YYYY-MM-DD".
type ResumeRequest struct {
	Title       string `json:"title" binding:"max=200"`
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl" binding:"omitempty,url"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	JobTitle    string `json:"jobTitle"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Summary     string `json:"summary"`

	HardSkills  []string `json:"hardSkills" binding:"dive,required"`
	SoftSkills  []string `json:"softSkills" binding:"dive,required"`
	BorderStyle string   `json:"borderStyle" binding:"omitempty,oneof=square circle squircle"`
	ColorHex    string   `json:"colorHex" binding:"omitempty,hexcolor"`

	Lat             *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng             *float64 `json:"lng" binding:"omitempty,longitude"`
	Disability      string   `json:"disability"`
	Gender          string   `json:"gender"`
	ExperienceLevel string   `json:"experienceLevel"`
	JobType         string   `json:"jobType"`
	Age             *int     `json:"age" binding:"omitempty,min=14,max=100"`
	SkillType       string   `json:"skillType"`

	WorkExperiences []WorkExperienceRequest `json:"workExperiences" binding:"dive"`
	Educations      []EducationRequest      `json:"educations" binding:"dive"`
}

type WorkExperienceRequest struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	StartDate   string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Description string `json:"description"`
}

type EducationRequest struct {
	Degree    string `json:"degree"`
	School    string `json:"school"`
	StartDate string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
}
