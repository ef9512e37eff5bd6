package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
)

// OnboardingHandler serves onboarding progress and route decisions.
type OnboardingHandler struct {
	OnboardingService *services.OnboardingService
}

func NewOnboardingHandler(s *services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{OnboardingService: s}
}

func (h *OnboardingHandler) Status(c *gin.Context) {
	status, err := h.OnboardingService.Status(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, "Failed to get onboarding status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *OnboardingHandler) Complete(c *gin.Context) {
	status, err := h.OnboardingService.Complete(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, "Failed to complete onboarding", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Redirect tells the frontend router where a page request should go.
// An empty redirect means the page may be shown.
func (h *OnboardingHandler) Redirect(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: path is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": middleware.OnboardingRedirect(path, middleware.SessionFrom(c))})
}
