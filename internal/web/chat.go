package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haawall/haawall-go/internal/chat"
	"github.com/haawall/haawall-go/internal/storage"
)

type chatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// Chat handles POST /api/chat. Anonymous callers are rate limited by IP;
// authenticated callers by their token subject, with guest tokens doubling
// as the history session key.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	chatReq := chat.Request{
		Message:   req.Message,
		ClientKey: c.ClientIP(),
		SessionID: req.SessionID,
	}
	if claims := claimsFrom(c); claims != nil {
		chatReq.ClientKey = claims.Subject
		if claims.Guest && chatReq.SessionID == "" {
			chatReq.SessionID = claims.Subject
		}
		if claims.UserID != 0 {
			uid := claims.UserID
			chatReq.UserID = &uid
		}
	}

	resp, err := h.chat.Handle(c.Request.Context(), chatReq)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"response": resp.Answer,
		"source":   resp.Source,
		"tier":     resp.Tier,
		"language": resp.Language,
		"cached":   resp.Cached,
	})
}

// ChatHistory handles GET /api/chat/history. Guests read the session bound
// to their token; registered users pass an explicit session id.
func (h *Handler) ChatHistory(c *gin.Context) {
	claims := claimsFrom(c)

	sessionID := c.Query("session_id")
	if sessionID == "" && claims != nil && claims.Guest {
		sessionID = claims.Subject
	}
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	if h.users == nil {
		c.JSON(http.StatusOK, gin.H{"messages": []storage.ChatMessage{}})
		return
	}

	messages, err := h.users.GetChatMessages(c.Request.Context(), sessionID, 50)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if messages == nil {
		messages = []storage.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
