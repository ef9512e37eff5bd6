package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/models"
)

const (
	onboardingPath         = "/onboarding"
	candidateDashboardPath = "/dashboard/candidates"
	companyDashboardPath   = "/dashboard/companies"
)

// under reports whether path is prefix itself or below it.
func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func exempt(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/metrics" || path == "/healthz"
}

// OnboardingRedirect decides where a page request for path should go instead.
// It returns "" when the request may proceed.
func OnboardingRedirect(path string, sess *auth.Session) string {
	if exempt(path) {
		return ""
	}
	if path == "/sign-in/create" {
		return "/sign-up"
	}

	if sess == nil {
		if under(path, onboardingPath) || under(path, candidateDashboardPath) || under(path, companyDashboardPath) {
			return "/"
		}
		return ""
	}

	if sess.OnboardingComplete == nil {
		return ""
	}
	if !*sess.OnboardingComplete {
		if !under(path, onboardingPath) {
			return onboardingPath
		}
		return ""
	}

	switch {
	case under(path, candidateDashboardPath) && sess.Role != models.RoleCandidate:
		return "/"
	case under(path, companyDashboardPath) && sess.Role != models.RoleCompany:
		return "/"
	case under(path, onboardingPath):
		return "/"
	}
	return ""
}

// RouteGate redirects page requests that OnboardingRedirect sends elsewhere.
// It must run after Authenticate.
func RouteGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if to := OnboardingRedirect(c.Request.URL.Path, SessionFrom(c)); to != "" {
			c.Redirect(http.StatusTemporaryRedirect, to)
			c.Abort()
			return
		}
		c.Next()
	}
}
