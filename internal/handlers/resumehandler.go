package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
)

// ResumeHandler serves the signed-in candidate's resumes.
type ResumeHandler struct {
	ResumeService *services.ResumeService
}

func NewResumeHandler(s *services.ResumeService) *ResumeHandler {
	return &ResumeHandler{ResumeService: s}
}

func (h *ResumeHandler) List(c *gin.Context) {
	resumes, err := h.ResumeService.List(c.Request.Context(), middleware.CandidateFrom(c))
	if err != nil {
		respondError(c, "Failed to list resumes", err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (h *ResumeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resume, err := h.ResumeService.Get(c.Request.Context(), middleware.CandidateFrom(c), id)
	if err != nil {
		respondError(c, "Failed to get resume", err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (h *ResumeHandler) Create(c *gin.Context) {
	h.save(c, nil, http.StatusCreated)
}

func (h *ResumeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.save(c, &id, http.StatusOK)
}

func (h *ResumeHandler) save(c *gin.Context, id *uuid.UUID, status int) {
	var req dtos.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	resume, err := h.ResumeService.Save(c.Request.Context(), middleware.CandidateFrom(c), id, req)
	if err != nil {
		respondError(c, "Failed to save resume", err)
		return
	}
	c.JSON(status, resume)
}

func (h *ResumeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ResumeService.Delete(c.Request.Context(), middleware.CandidateFrom(c), id); err != nil {
		respondError(c, "Failed to delete resume", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResumeHandler) SetDefault(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ResumeService.SetDefault(c.Request.Context(), middleware.CandidateFrom(c), id); err != nil {
		respondError(c, "Failed to set default resume", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
