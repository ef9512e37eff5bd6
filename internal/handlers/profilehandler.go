package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
)

// CandidateHandler serves candidate profiles and their favorite jobs.
type CandidateHandler struct {
	CandidateService *services.CandidateService
}

func NewCandidateHandler(s *services.CandidateService) *CandidateHandler {
	return &CandidateHandler{CandidateService: s}
}

func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	var q dtos.CandidateListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	candidates, err := h.CandidateService.ListCandidates(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to list candidates", err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	candidate, err := h.CandidateService.GetCandidate(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get candidate", err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) GetProfile(c *gin.Context) {
	candidate, err := h.CandidateService.GetProfile(c.Request.Context(), middleware.CandidateFrom(c))
	if err != nil {
		respondError(c, "Failed to get profile", err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) UpdateProfile(c *gin.Context) {
	var req dtos.CandidateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	candidate, err := h.CandidateService.UpdateProfile(c.Request.Context(), middleware.CandidateFrom(c), req)
	if err != nil {
		respondError(c, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) ListFavoriteJobs(c *gin.Context) {
	var q dtos.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	jobs, err := h.CandidateService.ListFavoriteJobs(c.Request.Context(), middleware.CandidateFrom(c), q)
	if err != nil {
		respondError(c, "Failed to list favorite jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// CompanyHandler serves company profiles and their favorite candidates.
type CompanyHandler struct {
	CompanyService *services.CompanyService
}

func NewCompanyHandler(s *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{CompanyService: s}
}

func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	var q dtos.CompanyListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	companies, err := h.CompanyService.ListCompanies(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to list companies", err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	company, err := h.CompanyService.GetCompany(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get company", err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) GetProfile(c *gin.Context) {
	company, err := h.CompanyService.GetProfile(c.Request.Context(), middleware.CompanyFrom(c))
	if err != nil {
		respondError(c, "Failed to get profile", err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	var req dtos.CompanyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	company, err := h.CompanyService.UpdateProfile(c.Request.Context(), middleware.CompanyFrom(c), req)
	if err != nil {
		respondError(c, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) ToggleFavoriteCandidate(c *gin.Context) {
	id, ok := pathID(c, "candidateId")
	if !ok {
		return
	}
	res, err := h.CompanyService.ToggleFavoriteCandidate(c.Request.Context(), middleware.CompanyFrom(c), id)
	if err != nil {
		respondError(c, "Failed to toggle favorite", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CompanyHandler) ListFavoriteCandidates(c *gin.Context) {
	var q dtos.CandidateListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	candidates, err := h.CompanyService.ListFavoriteCandidates(c.Request.Context(), middleware.CompanyFrom(c), q)
	if err != nil {
		respondError(c, "Failed to list favorite candidates", err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}
