// Package middleware holds the gin middleware shared by every route:
// session authentication, role gating, the onboarding redirect, request
// logging and request metrics.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
)

// SessionCookie is the cookie the identity provider's frontend SDK stores
// the session token in.
const SessionCookie = "__session"

const (
	sessionKey   = "session"
	candidateKey = "candidate"
	companyKey   = "company"
)

// TokenVerifier turns a session token into a session.
type TokenVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// Authenticate stores the session of a valid bearer token or session cookie
// in the context. Requests without a valid token continue anonymously.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token != "" {
			if sess, err := verifier.Verify(token); err == nil {
				c.Set(sessionKey, sess)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionFrom returns the request's session, or nil when anonymous.
func SessionFrom(c *gin.Context) *auth.Session {
	if v, ok := c.Get(sessionKey); ok {
		return v.(*auth.Session)
	}
	return nil
}

// CandidateFrom returns the candidate resolved by RequireCandidate.
func CandidateFrom(c *gin.Context) *models.Candidate {
	if v, ok := c.Get(candidateKey); ok {
		return v.(*models.Candidate)
	}
	return nil
}

// CompanyFrom returns the company resolved by RequireCompany or
// OptionalCompany, or nil.
func CompanyFrom(c *gin.Context) *models.Company {
	if v, ok := c.Get(companyKey); ok {
		return v.(*models.Company)
	}
	return nil
}

// RequireSession rejects anonymous requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// RequireCandidate admits signed-in candidates and loads their record.
func RequireCandidate(db *gorm.DB) gin.HandlerFunc {
	return requireRole(db, models.RoleCandidate, candidateKey, func() any { return &models.Candidate{} })
}

// RequireCompany admits signed-in companies and loads their record.
func RequireCompany(db *gorm.DB) gin.HandlerFunc {
	return requireRole(db, models.RoleCompany, companyKey, func() any { return &models.Company{} })
}

func requireRole(db *gorm.DB, role models.Role, key string, record func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthenticated.Error()})
			return
		}
		if sess.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only " + strings.ToLower(string(role)) + " accounts can do this"})
			return
		}

		rec := record()
		err := db.WithContext(c.Request.Context()).Where("clerk_id = ?", sess.UserID).First(rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": strings.ToLower(string(role)) + " not found"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account: " + err.Error()})
			return
		}
		c.Set(key, rec)
		c.Next()
	}
}

// OptionalCompany loads the company of a signed-in company user, when there
// is one, without rejecting anyone.
func OptionalCompany(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := SessionFrom(c); sess != nil && sess.Role == models.RoleCompany {
			var company models.Company
			err := db.WithContext(c.Request.Context()).Where("clerk_id = ?", sess.UserID).Limit(1).Find(&company).Error
			if err == nil && company.ClerkID != "" {
				c.Set(companyKey, &company)
			}
		}
		c.Next()
	}
}
