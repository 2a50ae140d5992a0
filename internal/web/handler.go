// Package web exposes the HTTP surface: the chat endpoint, auth, feedback,
// the admin API, and the public pages.
package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haawall/haawall-go/internal/auth"
	"github.com/haawall/haawall-go/internal/chat"
	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/mail"
	"github.com/haawall/haawall-go/internal/ratelimit"
	"github.com/haawall/haawall-go/internal/sentry"
	"github.com/haawall/haawall-go/internal/storage"
)

// Handler carries the HTTP endpoint dependencies.
type Handler struct {
	chat            *chat.Service
	admin           *chat.Admin
	tokens          *auth.Manager
	users           *storage.DB
	feedback        *mail.FeedbackService
	feedbackLimiter *ratelimit.KeyedLimiter
	log             *logger.Logger
}

// Config wires the handler dependencies.
type Config struct {
	Chat            *chat.Service
	Admin           *chat.Admin
	Tokens          *auth.Manager
	DB              *storage.DB
	Feedback        *mail.FeedbackService
	FeedbackLimiter *ratelimit.KeyedLimiter
	Logger          *logger.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(cfg Config) (*Handler, error) {
	switch {
	case cfg.Chat == nil:
		return nil, errors.New("web: chat service is required")
	case cfg.Tokens == nil:
		return nil, errors.New("web: token manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New("info")
	}
	return &Handler{
		chat:            cfg.Chat,
		admin:           cfg.Admin,
		tokens:          cfg.Tokens,
		users:           cfg.DB,
		feedback:        cfg.Feedback,
		feedbackLimiter: cfg.FeedbackLimiter,
		log:             cfg.Logger.WithModule("web"),
	}, nil
}

// abortWithError maps domain errors onto HTTP statuses. Unexpected errors
// are reported to Sentry and return an opaque 500.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
	case errors.Is(err, apperrors.ErrProvidersUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is temporarily unavailable"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.WithError(err).Error("request failed")
		sentry.CaptureException(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	c.Abort()
}
