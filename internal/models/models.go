package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCandidate Role = "CANDIDATE"
	RoleCompany   Role = "COMPANY"
)

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleCompany
}

// Application statuses. OFFER and REJECTED are terminal.
const (
	StatusApplied   = "APPLIED"
	StatusReviewing = "REVIEWING"
	StatusInterview = "INTERVIEW"
	StatusOffer     = "OFFER"
	StatusRejected  = "REJECTED"
)

func IsTerminalStatus(status string) bool {
	return status == StatusOffer || status == StatusRejected
}

// Base carries the identity and timestamps shared by every table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type Candidate struct {
	Base
	ClerkID    string `gorm:"uniqueIndex;not null" json:"clerkId"`
	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"index" json:"email"`
	ImageURL   string `json:"imageUrl"`
	IsVerified bool   `json:"isVerified"`

	DefaultResumeID *uuid.UUID `gorm:"type:uuid" json:"defaultResumeId"`
	// Preload("DefaultResume.WorkExperiences") etc. fills this.
	DefaultResume *Resume `gorm:"foreignKey:DefaultResumeID" json:"resumeData"`
}

type Company struct {
	Base
	ClerkID     string `gorm:"uniqueIndex;not null" json:"clerkId"`
	CompanyName string `gorm:"index" json:"companyName"`
	Email       string `json:"email"`
	WebsiteURL  string `json:"websiteUrl"`
	LogoURL     string `json:"logoUrl"`
	Description string `gorm:"type:text" json:"description"`
	Industry    string `json:"industry"`
	CompanySize string `json:"companySize"`
	City        string `json:"city"`
	Country     string `json:"country"`
	IsVerified  bool   `json:"isVerified"`

	// 'omitempty' keeps Job -> Company -> Jobs from nesting forever.
	Jobs []Job `json:"jobs,omitempty"`
}

type Resume struct {
	Base
	CandidateID uuid.UUID `gorm:"type:uuid;index;not null" json:"candidateId"`

	Title           string   `json:"title"`
	Description     string   `gorm:"type:text" json:"description"`
	PhotoURL        string   `json:"photoUrl"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	JobTitle        string   `json:"jobTitle"`
	City            string   `json:"city"`
	Country         string   `json:"country"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Summary         string   `gorm:"type:text" json:"summary"`
	HardSkills      []string `gorm:"serializer:json" json:"hardSkills"`
	SoftSkills      []string `gorm:"serializer:json" json:"softSkills"`
	BorderStyle     string   `gorm:"default:'squircle'" json:"borderStyle"`
	ColorHex        string   `gorm:"default:'#000000'" json:"colorHex"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Disability      string   `json:"disability"`
	Gender          string   `json:"gender"`
	ExperienceLevel string   `json:"experienceLevel"`
	JobType         string   `json:"jobType"`
	Age             *int     `json:"age"`
	SkillType       string   `json:"skillType"`

	WorkExperiences []WorkExperience `gorm:"constraint:OnDelete:CASCADE" json:"workExperiences"`
	Educations      []Education      `gorm:"constraint:OnDelete:CASCADE" json:"educations"`
}

type WorkExperience struct {
	Base
	ResumeID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"resumeId"`
	Position    string     `json:"position"`
	Company     string     `json:"company"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `gorm:"type:text" json:"description"`
}

type Education struct {
	Base
	ResumeID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"resumeId"`
	Degree    string     `json:"degree"`
	School    string     `json:"school"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type Job struct {
	Base

	// Foreign Key
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	// Association: GORM needs Preload() to fill this
	Company *Company `json:"company,omitempty"`

	Title               string   `gorm:"not null" json:"title"`
	Description         string   `gorm:"type:text" json:"description"`
	JobType             string   `json:"jobType"`
	ExperienceLevel     string   `json:"experienceLevel"`
	HardSkills          []string `gorm:"serializer:json" json:"hardSkills"`
	SoftSkills          []string `gorm:"serializer:json" json:"softSkills"`
	SalaryRange         string   `json:"salaryRange"`
	GenderPreference    string   `json:"genderPreference"`
	AgeCategory         []string `gorm:"serializer:json" json:"ageCategory"`
	IsDisabilityAllowed bool     `json:"isDisabilityAllowed"`
	IsRemote            bool     `json:"isRemote"`
	IsPublished         bool     `gorm:"index" json:"isPublished"`
	Lat                 *float64 `json:"lat"`
	Lng                 *float64 `json:"lng"`
	StateName           string   `json:"stateName"`
	CountryName         string   `json:"countryName"`
}

type JobApplication struct {
	Base
	JobID       uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_application_job_candidate;not null" json:"jobId"`
	CandidateID uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_application_job_candidate;not null" json:"candidateId"`
	ResumeID    *uuid.UUID `gorm:"type:uuid" json:"resumeId"`
	Status      string     `gorm:"default:'APPLIED'" json:"status"`

	Job       *Job       `json:"job,omitempty"`
	Candidate *Candidate `json:"candidate,omitempty"`
}

// ApplicationEvent is the audit trail of an application's lifecycle.
type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	ApplicationID uuid.UUID `gorm:"type:uuid;index" json:"applicationId"`
	JobID         uuid.UUID `gorm:"type:uuid;index" json:"jobId"`
	EventType     string    `json:"eventType"`
	Details       string    `gorm:"type:text" json:"details"`
}

type JobFavorite struct {
	Base
	CandidateID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_job_favorite;not null" json:"candidateId"`
	JobID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_job_favorite;not null" json:"jobId"`
}

type FavoriteCandidate struct {
	Base
	CompanyID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorite_candidate;not null" json:"companyId"`
	CandidateID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorite_candidate;not null" json:"candidateId"`
}

// ProcessedWebhook records delivered identity-provider webhook ids so retries
// are applied at most once.
type ProcessedWebhook struct {
	ID        string `gorm:"primaryKey"`
	EventType string
	CreatedAt time.Time `gorm:"index"`
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&Candidate{}, &Company{}, &Resume{}, &WorkExperience{}, &Education{},
		&Job{}, &JobApplication{}, &ApplicationEvent{}, &JobFavorite{}, &FavoriteCandidate{},
		&ProcessedWebhook{},
	}
}
