package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/metrics"
	"github.com/justsurfingit/job-board/internal/services"
)

// maxWebhookBody bounds the size of a webhook payload.
const maxWebhookBody = 1 << 20

// WebhookHandler receives the identity provider's user events.
type WebhookHandler struct {
	Verifier auth.WebhookVerifier
	UserSync *services.UserSyncService
	Logger   *slog.Logger
}

func NewWebhookHandler(v auth.WebhookVerifier, sync *services.UserSyncService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{Verifier: v, UserSync: sync, Logger: logger}
}

// Clerk is the POST /api/webhooks/clerk endpoint.
func (h *WebhookHandler) Clerk(c *gin.Context) {
	if !auth.HasWebhookHeaders(c.Request.Header) {
		metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing svix headers"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body: " + err.Error()})
		return
	}
	if err := h.Verifier.Verify(payload, c.Request.Header); err != nil {
		h.Logger.Warn("[webhook] rejected delivery", "id", c.GetHeader(auth.HeaderSvixID), "error", err)
		metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		respondError(c, "Webhook verification failed", err)
		return
	}

	var evt dtos.WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	outcome, err := h.UserSync.HandleEvent(c.Request.Context(), c.GetHeader(auth.HeaderSvixID), evt)
	if err != nil {
		respondError(c, "Failed to handle webhook", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "outcome": outcome})
}
