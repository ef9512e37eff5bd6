package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
)

// JobHandler serves job postings, applications and job extraction.
type JobHandler struct {
	JobService       *services.JobService
	CandidateService *services.CandidateService
}

func NewJobHandler(j *services.JobService, cands *services.CandidateService) *JobHandler {
	return &JobHandler{JobService: j, CandidateService: cands}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	draft, err := h.JobService.ExtractJob(c.Request.Context(), req)
	if err != nil {
		respondError(c, "AI Extraction failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    draft,
	})
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	var q dtos.JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	jobs, err := h.JobService.ListJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) ListCompanyJobs(c *gin.Context) {
	var q dtos.JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	jobs, err := h.JobService.ListCompanyJobs(c.Request.Context(), middleware.CompanyFrom(c), q)
	if err != nil {
		respondError(c, "Failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id, middleware.CompanyFrom(c))
	if err != nil {
		respondError(c, "Failed to get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// creating the job
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), middleware.CompanyFrom(c), req)
	if err != nil {
		respondError(c, "Failed to create job", err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), middleware.CompanyFrom(c), id, req)
	if err != nil {
		respondError(c, "Failed to update job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), middleware.CompanyFrom(c), id); err != nil {
		respondError(c, "Failed to delete job", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) ListApplicants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	apps, err := h.JobService.ListApplicants(c.Request.Context(), middleware.CompanyFrom(c), id)
	if err != nil {
		respondError(c, "Failed to list applicants", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.ApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	app, err := h.JobService.UpdateApplicationStatus(c.Request.Context(), middleware.CompanyFrom(c), id, req.Status)
	if err != nil {
		respondError(c, "Failed to update application", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *JobHandler) ListApplicationEvents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	events, err := h.JobService.ListApplicationEvents(c.Request.Context(), middleware.CompanyFrom(c), id)
	if err != nil {
		respondError(c, "Failed to list application events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *JobHandler) ApplyOrRemove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	applied, err := h.JobService.ApplyOrRemove(c.Request.Context(), middleware.CandidateFrom(c), id)
	if err != nil {
		respondError(c, "Failed to apply", err)
		return
	}
	c.JSON(http.StatusOK, dtos.ApplyResponse{Applied: applied})
}

func (h *JobHandler) CheckApplied(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	applied, err := h.JobService.CheckApplied(c.Request.Context(), middleware.CandidateFrom(c), id)
	if err != nil {
		respondError(c, "Failed to check application", err)
		return
	}
	c.JSON(http.StatusOK, dtos.AppliedStatusResponse{HasApplied: applied})
}

func (h *JobHandler) IsFavorite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fav, err := h.CandidateService.IsFavoriteJob(c.Request.Context(), middleware.CandidateFrom(c), id)
	if err != nil {
		respondError(c, "Failed to check favorite", err)
		return
	}
	c.JSON(http.StatusOK, dtos.FavoriteStatusResponse{IsFavorite: fav})
}

func (h *JobHandler) ToggleFavorite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.CandidateService.ToggleFavoriteJob(c.Request.Context(), middleware.CandidateFrom(c), id)
	if err != nil {
		respondError(c, "Failed to toggle favorite", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
