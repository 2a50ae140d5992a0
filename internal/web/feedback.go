package web

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/haawall/haawall-go/internal/errors"
)

type feedbackRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Message  string `json:"message" binding:"required"`
}

const maxFeedbackLength = 5000

// Feedback handles POST /api/feedback. Submissions are rate limited per
// client IP; an accepted submission sends the team notification and a
// bilingual auto-reply to the sender.
func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and message are required"})
		return
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		h.abortWithError(c, &apperrors.ValidationError{Field: "email", Message: "must be a valid email address"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.abortWithError(c, &apperrors.ValidationError{Field: "message", Message: "must not be empty"})
		return
	}
	if len(req.Message) > maxFeedbackLength {
		h.abortWithError(c, &apperrors.ValidationError{Field: "message", Message: "is too long"})
		return
	}

	if h.feedbackLimiter != nil && !h.feedbackLimiter.Allow(c.ClientIP()) {
		h.abortWithError(c, apperrors.ErrRateLimitExceeded)
		return
	}

	if !h.feedback.Enabled() {
		c.JSON(http.StatusBadGateway, gin.H{"error": "feedback delivery is not configured"})
		return
	}

	body := req.Message
	if req.Category != "" || req.Subject != "" {
		body = fmt.Sprintf("Category: %s\nSubject: %s\n\n%s", req.Category, req.Subject, req.Message)
	}
	if err := h.feedback.Submit(strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), body); err != nil {
		h.log.WithError(err).Error("feedback delivery failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to deliver feedback"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "received"})
}
