package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/analytics"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/services"
)

const (
	exportFilename = "job_data.csv"
	// maxResumeAge closes an age range given only its lower bound.
	maxResumeAge = 100
)

// AnalysisHandler serves the dashboard datasets.
type AnalysisHandler struct {
	AnalysisService *services.AnalysisService
}

func NewAnalysisHandler(s *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{AnalysisService: s}
}

func (h *AnalysisHandler) CandidateAnalysis(c *gin.Context) {
	resumes, err := h.AnalysisService.CandidateAnalysis(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load resumes", err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (h *AnalysisHandler) CompanyAnalysis(c *gin.Context) {
	companies, err := h.AnalysisService.CompanyAnalysis(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load companies", err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *AnalysisHandler) JobDashboard(c *gin.Context) {
	var q dtos.JobAnalysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	dash, err := h.AnalysisService.JobDashboard(c.Request.Context(), jobFilter(q))
	if err != nil {
		respondError(c, "Failed to build job dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// ExportJobs downloads the filtered jobs as CSV.
func (h *AnalysisHandler) ExportJobs(c *gin.Context) {
	var q dtos.JobAnalysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	jobs, err := h.AnalysisService.FilteredJobs(c.Request.Context(), jobFilter(q))
	if err != nil {
		respondError(c, "Failed to export jobs", err)
		return
	}
	var buf bytes.Buffer
	if err := analytics.ExportJobsCSV(&buf, jobs); err != nil {
		respondError(c, "Failed to export jobs", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *AnalysisHandler) CandidateDashboard(c *gin.Context) {
	var q dtos.ResumeAnalysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	f := analytics.ResumeFilter{
		Category:   q.Category,
		JobType:    q.JobType,
		Disability: q.Disability,
		Location:   q.Location,
		Skill:      q.Skill,
	}
	if q.MinAge != nil || q.MaxAge != nil {
		ages := analytics.AgeRange{Min: 0, Max: maxResumeAge}
		if q.MinAge != nil {
			ages.Min = *q.MinAge
		}
		if q.MaxAge != nil {
			ages.Max = *q.MaxAge
		}
		if ages.Max < ages.Min {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: maxAge must not be below minAge"})
			return
		}
		f.Ages = &ages
	}

	dash, err := h.AnalysisService.CandidateDashboard(c.Request.Context(), f)
	if err != nil {
		respondError(c, "Failed to build candidate dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func jobFilter(q dtos.JobAnalysisQuery) analytics.JobFilter {
	return analytics.JobFilter{
		JobType:           q.JobType,
		ExperienceLevel:   q.ExperienceLevel,
		SalaryRange:       q.SalaryRange,
		Location:          q.Location,
		CompanyID:         q.CompanyID,
		Skill:             q.Skill,
		AgeCategory:       q.AgeCategory,
		Genders:           q.Gender,
		Remote:            q.Remote,
		DisabilityAllowed: q.DisabilityAllowed,
		Query:             q.Query,
	}
}
