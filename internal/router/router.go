// Package router builds the gin engine and registers every route.
package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/handlers"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the routes need.
type Deps struct {
	DB              *gorm.DB
	Logger          *slog.Logger
	Sessions        middleware.TokenVerifier
	WebhookVerifier auth.WebhookVerifier
	AllowedOrigins  []string
	// Gatherer serves /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer

	Jobs       *services.JobService
	Candidates *services.CandidateService
	Companies  *services.CompanyService
	Resumes    *services.ResumeService
	Analysis   *services.AnalysisService
	UserSync   *services.UserSyncService
	Onboarding *services.OnboardingService
}

// New returns the engine with middleware and routes registered.
func New(d Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		dtos.RegisterValidators(v)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))
	r.Use(middleware.Authenticate(d.Sessions))
	r.Use(middleware.RouteGate())

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/healthz", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	webhookHandler := handlers.NewWebhookHandler(d.WebhookVerifier, d.UserSync, d.Logger)
	r.POST("/api/webhooks/clerk", webhookHandler.Clerk)

	jobHandler := handlers.NewJobHandler(d.Jobs, d.Candidates)
	candidateHandler := handlers.NewCandidateHandler(d.Candidates)
	companyHandler := handlers.NewCompanyHandler(d.Companies)
	resumeHandler := handlers.NewResumeHandler(d.Resumes)
	analysisHandler := handlers.NewAnalysisHandler(d.Analysis)
	onboardingHandler := handlers.NewOnboardingHandler(d.Onboarding)

	requireCandidate := middleware.RequireCandidate(d.DB)
	requireCompany := middleware.RequireCompany(d.DB)

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/me/redirect", onboardingHandler.Redirect)

		signedIn := api.Group("", middleware.RequireSession())

		signedIn.GET("/onboarding", onboardingHandler.Status)
		signedIn.POST("/onboarding/complete", onboardingHandler.Complete)

		// Candidate Routes
		signedIn.GET("/candidates", candidateHandler.ListCandidates)
		signedIn.GET("/candidates/me", requireCandidate, candidateHandler.GetProfile)
		signedIn.PUT("/candidates/me", requireCandidate, candidateHandler.UpdateProfile)
		signedIn.GET("/candidates/me/favorite-jobs", requireCandidate, candidateHandler.ListFavoriteJobs)
		signedIn.GET("/candidates/:id", candidateHandler.GetCandidate)

		// Company Routes
		signedIn.GET("/companies", companyHandler.ListCompanies)
		signedIn.GET("/companies/me", requireCompany, companyHandler.GetProfile)
		signedIn.PUT("/companies/me", requireCompany, companyHandler.UpdateProfile)
		signedIn.GET("/companies/me/jobs", requireCompany, jobHandler.ListCompanyJobs)
		signedIn.GET("/companies/me/favorite-candidates", requireCompany, companyHandler.ListFavoriteCandidates)
		signedIn.POST("/companies/me/favorite-candidates/:candidateId", requireCompany, companyHandler.ToggleFavoriteCandidate)
		signedIn.GET("/companies/:id", companyHandler.GetCompany)

		// Resume Routes
		resumes := signedIn.Group("/resumes", requireCandidate)
		resumes.GET("", resumeHandler.List)
		resumes.POST("", resumeHandler.Create)
		resumes.GET("/:id", resumeHandler.Get)
		resumes.PUT("/:id", resumeHandler.Update)
		resumes.DELETE("/:id", resumeHandler.Delete)
		resumes.POST("/:id/default", resumeHandler.SetDefault)

		// Job Routes
		signedIn.GET("/jobs", jobHandler.ListJobs)
		signedIn.GET("/jobs/:id", middleware.OptionalCompany(d.DB), jobHandler.GetJob)
		signedIn.POST("/jobs/extract", requireCompany, jobHandler.ParseJob)
		signedIn.POST("/jobs", requireCompany, jobHandler.CreateJob)
		signedIn.PUT("/jobs/:id", requireCompany, jobHandler.UpdateJob)
		signedIn.DELETE("/jobs/:id", requireCompany, jobHandler.DeleteJob)
		signedIn.GET("/jobs/:id/applicants", requireCompany, jobHandler.ListApplicants)
		signedIn.POST("/jobs/:id/apply", requireCandidate, jobHandler.ApplyOrRemove)
		signedIn.GET("/jobs/:id/applied", requireCandidate, jobHandler.CheckApplied)
		signedIn.GET("/jobs/:id/favorite", requireCandidate, jobHandler.IsFavorite)
		signedIn.POST("/jobs/:id/favorite", requireCandidate, jobHandler.ToggleFavorite)

		signedIn.PATCH("/applications/:id/status", requireCompany, jobHandler.UpdateApplicationStatus)
		signedIn.GET("/applications/:id/events", requireCompany, jobHandler.ListApplicationEvents)

		// Analysis Routes
		signedIn.GET("/analysis/resumes", analysisHandler.CandidateAnalysis)
		signedIn.GET("/analysis/companies", analysisHandler.CompanyAnalysis)
		signedIn.GET("/analysis/jobs", analysisHandler.JobDashboard)
		signedIn.GET("/analysis/jobs/export", analysisHandler.ExportJobs)
		signedIn.GET("/analysis/candidates", analysisHandler.CandidateDashboard)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	config.MaxAge = 12 * time.Hour
	return config
}
