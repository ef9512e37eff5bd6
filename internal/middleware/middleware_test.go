package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubVerifier accepts tokens it knows.
type stubVerifier map[string]*auth.Session

func (s stubVerifier) Verify(token string) (*auth.Session, error) {
	if sess, ok := s[token]; ok {
		return sess, nil
	}
	return nil, auth.ErrInvalidToken
}

func boolPtr(b bool) *bool { return &b }

func TestOnboardingRedirect(t *testing.T) {
	done := &auth.Session{UserID: "u", Role: models.RoleCandidate, OnboardingComplete: boolPtr(true)}
	doneCompany := &auth.Session{UserID: "o", Role: models.RoleCompany, OnboardingComplete: boolPtr(true)}
	pending := &auth.Session{UserID: "u", Role: models.RoleCandidate, OnboardingComplete: boolPtr(false)}
	unknown := &auth.Session{UserID: "u", Role: models.RoleCandidate}

	tests := []struct {
		name string
		path string
		sess *auth.Session
		want string
	}{
		{"sign in create goes to sign up", "/sign-in/create", nil, "/sign-up"},
		{"sign in create when signed in", "/sign-in/create", done, "/sign-up"},
		{"anonymous onboarding", "/onboarding", nil, "/"},
		{"anonymous candidate dashboard", "/dashboard/candidates/jobs", nil, "/"},
		{"anonymous company dashboard", "/dashboard/companies", nil, "/"},
		{"anonymous public page", "/jobs", nil, ""},
		{"anonymous dashboard lookalike", "/dashboard/candidatesX", nil, ""},
		{"pending user sent to onboarding", "/dashboard/candidates", pending, "/onboarding"},
		{"pending user on home", "/", pending, "/onboarding"},
		{"pending user inside onboarding", "/onboarding/company", pending, ""},
		{"candidate on company dashboard", "/dashboard/companies", done, "/"},
		{"candidate on candidate dashboard", "/dashboard/candidates/resumes", done, ""},
		{"company on candidate dashboard", "/dashboard/candidates", doneCompany, "/"},
		{"company on company dashboard", "/dashboard/companies/jobs", doneCompany, ""},
		{"onboarded user on onboarding", "/onboarding", done, "/"},
		{"onboarding lookalike is not onboarding", "/onboardingX", pending, "/onboarding"},
		{"onboarded user on onboarding lookalike", "/onboardingX", done, ""},
		{"claim absent", "/dashboard/companies", unknown, ""},
		{"api never redirected", "/api/v1/jobs", pending, ""},
		{"metrics never redirected", "/metrics", nil, ""},
		{"health never redirected", "/healthz", pending, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OnboardingRedirect(tt.path, tt.sess))
		})
	}
}

func newEngine(verifier TokenVerifier, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(verifier))
	r.Use(mw...)
	r.GET("/*path", func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, sess.UserID)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{"good": {UserID: "user_1"}}
	r := newEngine(verifier)

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer token", "Bearer good", "", "user_1"},
		{"lowercase scheme", "bearer good", "", "user_1"},
		{"session cookie", "", "good", "user_1"},
		{"invalid token", "Bearer bad", "", "anonymous"},
		{"no token", "", "", "anonymous"},
		{"basic auth ignored", "Basic good", "", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestRequireSession(t *testing.T) {
	r := newEngine(stubVerifier{"good": {UserID: "user_1"}}, RequireSession())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ada := testutil.CreateCandidate(t, db, "user_1", "Ada Lovelace")
	verifier := stubVerifier{
		"candidate": {UserID: "user_1", Role: models.RoleCandidate},
		"ghost":     {UserID: "user_9", Role: models.RoleCandidate},
		"company":   {UserID: "org_1", Role: models.RoleCompany},
	}

	r := gin.New()
	r.Use(Authenticate(verifier))
	r.GET("/candidate", RequireCandidate(db), func(c *gin.Context) {
		c.String(http.StatusOK, CandidateFrom(c).ID.String())
	})

	tests := []struct {
		token string
		code  int
	}{
		{"", http.StatusUnauthorized},
		{"company", http.StatusForbidden},
		{"ghost", http.StatusNotFound},
		{"candidate", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run("token "+tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/candidate", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, ada.ID.String(), w.Body.String())
			}
		})
	}
}

func TestOptionalCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")
	verifier := stubVerifier{
		"company":   {UserID: "org_1", Role: models.RoleCompany},
		"candidate": {UserID: "user_1", Role: models.RoleCandidate},
	}

	r := gin.New()
	r.Use(Authenticate(verifier), OptionalCompany(db))
	r.GET("/", func(c *gin.Context) {
		if co := CompanyFrom(c); co != nil {
			c.String(http.StatusOK, co.ID.String())
			return
		}
		c.String(http.StatusOK, "none")
	})

	for token, want := range map[string]string{"company": acme.ID.String(), "candidate": "none", "": "none"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Body.String(), "token %q", token)
	}
}

func TestRouteGate(t *testing.T) {
	verifier := stubVerifier{"pending": {UserID: "u", Role: models.RoleCandidate, OnboardingComplete: boolPtr(false)}}
	r := newEngine(verifier, RouteGate())

	req := httptest.NewRequest(http.MethodGet, "/dashboard/candidates", nil)
	req.Header.Set("Authorization", "Bearer pending")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/onboarding", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(testutil.Logger()), Metrics())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.AbortWithStatus(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom?x=1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
