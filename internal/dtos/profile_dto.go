package dtos

type CandidateListQuery struct {
	ListQuery
	SortBy string `form:"sortBy" binding:"omitempty,oneof=name email createdAt"`
}

type CompanyListQuery struct {
	ListQuery
	SortBy string `form:"sortBy" binding:"omitempty,oneof=companyName createdAt"`
}

type CandidateProfileRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
}

// CompanyProfileRequest is the editable part of a company profile. The email
// must belong to the website's domain (see the "companydomain" struct rule).
type CompanyProfileRequest struct {
	CompanyName string `json:"companyName" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
	WebsiteURL  string `json:"websiteUrl" binding:"required,url"`
	LogoURL     string `json:"logoUrl" binding:"omitempty,url"`
	Description string `json:"description" binding:"max=5000"`
	Industry    string `json:"industry"`
	CompanySize string `json:"companySize" binding:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	City        string `json:"city"`
	Country     string `json:"country"`
}
