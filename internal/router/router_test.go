package router

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/metrics"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions map[string]*auth.Session

func (s stubSessions) Verify(token string) (*auth.Session, error) {
	if sess, ok := s[token]; ok {
		return sess, nil
	}
	return nil, auth.ErrInvalidToken
}

// stubWebhooks accepts deliveries signed "valid".
type stubWebhooks struct{}

func (stubWebhooks) Verify(_ []byte, h http.Header) error {
	if h.Get(auth.HeaderSvixSignature) != "valid" {
		return auth.ErrWebhookSignature
	}
	return nil
}

type stubIdentity struct{ deleted []string }

func (s *stubIdentity) UpdatePublicMetadata(context.Context, string, auth.PublicMetadata) error {
	return nil
}

func (s *stubIdentity) DeleteUser(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type silentNotifier struct{}

func (silentNotifier) ApplicationReceived(context.Context, *models.Job, *models.Candidate) {}
func (silentNotifier) ApplicationStatusChanged(context.Context, *models.Job, *models.Candidate, string) {
}

type server struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := testutil.Logger()
	identity := &stubIdentity{}
	analysis := services.NewAnalysisService(db, time.Minute, logger)

	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	done := true
	engine := New(Deps{
		DB:     db,
		Logger: logger,
		Sessions: stubSessions{
			"ada":  {UserID: "user_1", Role: models.RoleCandidate, OnboardingComplete: &done},
			"acme": {UserID: "org_1", Role: models.RoleCompany, OnboardingComplete: &done},
			"new":  {UserID: "user_2", Role: models.RoleCandidate, OnboardingComplete: new(bool)},
		},
		WebhookVerifier: stubWebhooks{},
		AllowedOrigins:  []string{"*"},
		Gatherer:        reg,
		Jobs:            services.NewJobService(db, nil, silentNotifier{}, analysis, logger),
		Candidates:      services.NewCandidateService(db),
		Companies:       services.NewCompanyService(db, analysis),
		Resumes:         services.NewResumeService(db, analysis),
		Analysis:        analysis,
		UserSync:        services.NewUserSyncService(db, identity, analysis, logger),
		Onboarding:      services.NewOnboardingService(db, identity, logger),
	})
	return &server{t: t, db: db, engine: engine}
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jobboard_http_requests_total")
}

func TestAuthGates(t *testing.T) {
	s := newServer(t)
	testutil.CreateCandidate(t, s.db, "user_1", "Ada Lovelace")
	testutil.CreateCompany(t, s.db, "org_1", "Acme")

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/jobs", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/jobs", "forged", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/jobs", "ada", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/jobs", "ada", map[string]any{"title": "x", "description": "y"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/resumes", "acme", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/jobs/not-a-uuid", "ada", nil).Code)
}

func TestJobApplicationFlow(t *testing.T) {
	s := newServer(t)
	ada := testutil.CreateCandidate(t, s.db, "user_1", "Ada Lovelace")
	testutil.CreateResume(t, s.db, ada, "Main")
	testutil.CreateCompany(t, s.db, "org_1", "Acme")

	w := s.do(http.MethodPost, "/api/v1/jobs", "acme", map[string]any{
		"title":       "Backend Engineer",
		"description": "Build APIs",
		"jobType":     "Full-Time",
		"hardSkills":  []string{"Go"},
		"isPublished": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode[models.Job](t, w)

	w = s.do(http.MethodPost, "/api/v1/jobs", "acme", map[string]any{"title": "Bad", "description": "x", "jobType": "Gig"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	jobPath := "/api/v1/jobs/" + job.ID.String()
	w = s.do(http.MethodPost, jobPath+"/apply", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"applied":true}`, w.Body.String())

	w = s.do(http.MethodGet, jobPath+"/applied", "ada", nil)
	assert.JSONEq(t, `{"hasApplied":true}`, w.Body.String())

	w = s.do(http.MethodPost, jobPath+"/favorite", "ada", nil)
	assert.JSONEq(t, `{"success":true,"action":"added"}`, w.Body.String())
	w = s.do(http.MethodGet, jobPath+"/favorite", "ada", nil)
	assert.JSONEq(t, `{"isFavorite":true}`, w.Body.String())

	w = s.do(http.MethodGet, jobPath+"/applicants", "acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode[[]models.JobApplication](t, w)
	require.Len(t, apps, 1)

	appPath := "/api/v1/applications/" + apps[0].ID.String()
	w = s.do(http.MethodPatch, appPath+"/status", "acme", map[string]string{"status": "OFFER"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPatch, appPath+"/status", "acme", map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPatch, appPath+"/status", "acme", map[string]string{"status": "HIRED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, appPath+"/events", "acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ApplicationEvent](t, w), 2)

	w = s.do(http.MethodPost, "/api/v1/jobs/extract", "acme", map[string]string{"raw_html": "<p>job</p>"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, jobPath, "acme", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, jobPath, "ada", nil).Code)
}

func TestCompanyProfileDomainRule(t *testing.T) {
	s := newServer(t)
	testutil.CreateCompany(t, s.db, "org_1", "Acme")

	body := map[string]string{
		"companyName": "Acme",
		"email":       "jobs@gmail.com",
		"websiteUrl":  "https://www.acme.com",
	}
	w := s.do(http.MethodPut, "/api/v1/companies/me", "acme", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body["email"] = "jobs@acme.com"
	w = s.do(http.MethodPut, "/api/v1/companies/me", "acme", body)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAnalysisRoutes(t *testing.T) {
	s := newServer(t)
	testutil.CreateCandidate(t, s.db, "user_1", "Ada Lovelace")
	acme := testutil.CreateCompany(t, s.db, "org_1", "Acme")
	testutil.CreateJob(t, s.db, acme.ID, "Backend Engineer", true)
	testutil.CreateCompany(t, s.db, "org_2", "Globex")

	w := s.do(http.MethodGet, "/api/v1/analysis/companies", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"jobs":[]`)

	w = s.do(http.MethodGet, "/api/v1/analysis/jobs?jobType=Full-Time", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["totalJobs"])

	w = s.do(http.MethodGet, "/api/v1/analysis/jobs/export", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="job_data.csv"`, w.Header().Get("Content-Disposition"))
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Title", rows[0][0])
	assert.Equal(t, "Backend Engineer", rows[1][0])

	w = s.do(http.MethodGet, "/api/v1/analysis/candidates?minAge=40&maxAge=30", "ada", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/v1/analysis/candidates?minAge=20&maxAge=30", "ada", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func webhook(s *server, id, signature string, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", strings.NewReader(payload))
	if id != "" {
		req.Header.Set(auth.HeaderSvixID, id)
		req.Header.Set(auth.HeaderSvixTimestamp, "1700000000")
		req.Header.Set(auth.HeaderSvixSignature, signature)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestClerkWebhook(t *testing.T) {
	s := newServer(t)
	created := `{"type":"user.created","data":{"id":"user_9","first_name":"Grace","last_name":"Hopper",
		"email_addresses":[{"email_address":"grace@example.com","verification":{"status":"verified"}}],
		"unsafe_metadata":{"role":"CANDIDATE"}}}`

	assert.Equal(t, http.StatusBadRequest, webhook(s, "", "", created).Code)
	assert.Equal(t, http.StatusBadRequest, webhook(s, "msg_1", "forged", created).Code)
	assert.Equal(t, http.StatusBadRequest, webhook(s, "msg_1", "valid", "{not json").Code)

	w := webhook(s, "msg_1", "valid", created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"outcome":"processed"}`, w.Body.String())

	w = webhook(s, "msg_1", "valid", created)
	assert.JSONEq(t, `{"success":true,"outcome":"duplicate"}`, w.Body.String())

	var c models.Candidate
	require.NoError(t, s.db.First(&c, "clerk_id = ?", "user_9").Error)
	assert.Equal(t, "Grace Hopper", c.Name)

	noRole := `{"type":"user.created","data":{"id":"user_10","unsafe_metadata":{}}}`
	assert.Equal(t, http.StatusBadRequest, webhook(s, "msg_2", "valid", noRole).Code)

	w = webhook(s, "msg_3", "valid", `{"type":"email.created","data":{}}`)
	assert.JSONEq(t, `{"success":true,"outcome":"ignored"}`, w.Body.String())
}

func TestOnboardingRoutes(t *testing.T) {
	s := newServer(t)
	testutil.CreateCandidate(t, s.db, "user_2", "New Person")

	w := s.do(http.MethodGet, "/api/v1/me/redirect?path=/dashboard/candidates", "new", nil)
	assert.JSONEq(t, `{"redirect":"/onboarding"}`, w.Body.String())
	w = s.do(http.MethodGet, "/api/v1/me/redirect?path=/onboarding", "", nil)
	assert.JSONEq(t, `{"redirect":"/"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/onboarding", "new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"CANDIDATE","onboardingComplete":false,"missing":["defaultResume"]}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/onboarding/complete", "new", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/dashboard/candidates", "new", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/onboarding", w.Header().Get("Location"))
}

func TestUnknownSessionIsUnauthorized(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/api/v1/candidates/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), auth.ErrUnauthenticated.Error())
}
