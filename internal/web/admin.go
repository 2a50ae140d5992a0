package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type infoRequest struct {
	Category string `json:"category" binding:"required"`
	Key      string `json:"key" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

type ruleRequest struct {
	Category string   `json:"category" binding:"required"`
	Triggers []string `json:"triggers" binding:"required"`
}

// AdminListInfo handles GET /api/admin/info[?category=].
func (h *Handler) AdminListInfo(c *gin.Context) {
	entries, err := h.admin.ListInfo(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// AdminUpsertInfo handles POST and PUT /api/admin/info.
func (h *Handler) AdminUpsertInfo(c *gin.Context) {
	var req infoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category, key and value are required"})
		return
	}
	if err := h.admin.UpsertInfo(c.Request.Context(), req.Category, req.Key, req.Value); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// AdminDeleteInfo handles DELETE /api/admin/info/:category/:key.
func (h *Handler) AdminDeleteInfo(c *gin.Context) {
	if err := h.admin.DeleteInfo(c.Request.Context(), c.Param("category"), c.Param("key")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AdminUpsertRule handles POST /api/admin/rules.
func (h *Handler) AdminUpsertRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and triggers are required"})
		return
	}
	if err := h.admin.UpsertRule(req.Category, req.Triggers); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// AdminDeleteRule handles DELETE /api/admin/rules/:category.
func (h *Handler) AdminDeleteRule(c *gin.Context) {
	if err := h.admin.DeleteRule(c.Param("category")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AdminClearCache handles POST /api/admin/cache/clear.
func (h *Handler) AdminClearCache(c *gin.Context) {
	h.admin.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// AdminTrimCache handles POST /api/admin/cache/trim[?max=].
func (h *Handler) AdminTrimCache(c *gin.Context) {
	maxEntries := 0
	if raw := c.Query("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a non-negative integer"})
			return
		}
		maxEntries = parsed
	}
	dropped := h.admin.TrimCache(maxEntries)
	c.JSON(http.StatusOK, gin.H{"status": "trimmed", "dropped": dropped})
}

// AdminReloadKnowledge handles POST /api/admin/knowledge/reload.
func (h *Handler) AdminReloadKnowledge(c *gin.Context) {
	if err := h.admin.ReloadKnowledge(c.Request.Context()); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "stats": h.admin.Stats()})
}

// AdminKnowledgeStats handles GET /api/admin/knowledge/stats.
func (h *Handler) AdminKnowledgeStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.admin.Stats())
}

// AdminBackup handles POST /api/admin/knowledge/backup.
func (h *Handler) AdminBackup(c *gin.Context) {
	if !h.admin.BackupEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backup storage is not configured"})
		return
	}
	key, err := h.admin.Backup(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "uploaded", "key": key})
}

// AdminRestore handles POST /api/admin/knowledge/restore.
func (h *Handler) AdminRestore(c *gin.Context) {
	if !h.admin.BackupEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backup storage is not configured"})
		return
	}
	if err := h.admin.Restore(c.Request.Context()); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "restored", "stats": h.admin.Stats()})
}
