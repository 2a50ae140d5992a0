package web

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haawall/haawall-go/internal/auth"
	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/storage"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const minPasswordLength = 8

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		h.abortWithError(c, &apperrors.ValidationError{Field: "email", Message: "must be a valid email address"})
		return
	}
	if len(req.Password) < minPasswordLength {
		h.abortWithError(c, &apperrors.ValidationError{Field: "password", Message: "must be at least 8 characters"})
		return
	}
	if h.users == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "registration is not available"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), email, hashed, strings.TrimSpace(req.FullName), storage.UserTypeStudent)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_type":    user.UserType,
	})
}

// Login handles POST /api/auth/login. Unknown accounts and wrong passwords
// produce the same response.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if h.users == nil {
		h.abortWithError(c, apperrors.ErrUnauthorized)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.users.GetUserByEmail(c.Request.Context(), email)
	if err != nil || !user.IsActive || !auth.CheckPassword(user.HashedPassword, req.Password) {
		h.abortWithError(c, apperrors.ErrUnauthorized)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_type":    user.UserType,
	})
}

// Guest handles POST /api/auth/guest: an anonymous session token whose
// subject doubles as the chat history session id.
func (h *Handler) Guest(c *gin.Context) {
	token, sessionID, err := h.tokens.IssueGuestToken()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"session_id":   sessionID,
		"user_type":    storage.UserTypeGuest,
	})
}
