package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haawall/haawall-go/internal/config"
	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/storage"
	"github.com/haawall/haawall-go/internal/web"
)

// setupRoutes configures all HTTP routes.
func setupRoutes(router *gin.Engine, handler *web.Handler, db *storage.DB, store *knowledge.Store, registry *prometheus.Registry, cfg *config.Config) {
	// Public pages.
	router.GET("/", web.Page("home"))
	router.HEAD("/", web.Page("home"))
	router.GET("/about", web.Page("about"))
	router.GET("/contact", web.Page("contact"))
	router.GET("/index.html", web.RedirectTo("/"))
	router.GET("/about.html", web.RedirectTo("/about"))
	router.GET("/contact.html", web.RedirectTo("/contact"))

	// Liveness: process check only, no dependencies.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness: database reachable and knowledge loaded.
	readyHandler := func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"database":   "connected",
			"categories": len(store.Categories()),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// API.
	api := router.Group("/api")
	{
		api.POST("/chat", handler.OptionalAuth(), handler.Chat)
		api.GET("/chat/history", handler.RequireAuth(), handler.ChatHistory)
		api.POST("/feedback", handler.Feedback)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/guest", handler.Guest)
		}

		adminGroup := api.Group("/admin", handler.RequireAuth(), handler.RequireAdmin())
		{
			adminGroup.GET("/info", handler.AdminListInfo)
			adminGroup.POST("/info", handler.AdminUpsertInfo)
			adminGroup.PUT("/info", handler.AdminUpsertInfo)
			adminGroup.DELETE("/info/:category/:key", handler.AdminDeleteInfo)

			adminGroup.POST("/rules", handler.AdminUpsertRule)
			adminGroup.DELETE("/rules/:category", handler.AdminDeleteRule)

			adminGroup.POST("/cache/clear", handler.AdminClearCache)
			adminGroup.POST("/cache/trim", handler.AdminTrimCache)

			adminGroup.POST("/knowledge/reload", handler.AdminReloadKnowledge)
			adminGroup.GET("/knowledge/stats", handler.AdminKnowledgeStats)
			adminGroup.POST("/knowledge/backup", handler.AdminBackup)
			adminGroup.POST("/knowledge/restore", handler.AdminRestore)
		}
	}

	// Prometheus metrics, behind basic auth when a password is configured.
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
