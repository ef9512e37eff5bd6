package dtos

import (
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/job-board/internal/auth"
)

// RegisterValidators installs the custom struct rules on v. It is called once
// with gin's validator engine at startup.
func RegisterValidators(v *validator.Validate) {
	v.RegisterStructValidation(companyDomainRule, CompanyProfileRequest{})
}

// companyDomainRule requires a company email on the company's own domain.
func companyDomainRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(CompanyProfileRequest)
	if req.Email == "" || req.WebsiteURL == "" {
		return
	}
	if !auth.EmailMatchesDomain(req.Email, req.WebsiteURL) {
		sl.ReportError(req.Email, "Email", "email", "companydomain", auth.WebsiteDomain(req.WebsiteURL))
	}
}
